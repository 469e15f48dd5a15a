/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/go-logr/logr"

	"github.com/orien/buildlab/internal/version"
)

// Client gives access to the authenticated Azure operations buildlab needs
type Client interface {
	ResourceManager() ResourceManager
	LogSearcher() LogSearcher
	TenantID() string
}

// Config holds the service principal used to authenticate
type Config struct {
	ClientID       string
	ClientSecret   string
	Tenant         string
	SubscriptionID string
}

// DefaultClient is a Client backed by a client secret credential
type DefaultClient struct {
	tenantID string
	arm      *ARMOperations
	logs     *LogAnalyticsClient
}

// Ensure that DefaultClient implements Client
var _ Client = (*DefaultClient)(nil)

// clientOptions disables the SDK retry policy; every failure surfaces immediately
func clientOptions() policy.ClientOptions {
	return policy.ClientOptions{
		Retry:     policy.RetryOptions{MaxRetries: -1},
		Telemetry: policy.TelemetryOptions{ApplicationID: version.ApplicationID()},
	}
}

// NewDefaultClient resolves the tenant, builds the credential and creates the ARM clients
func NewDefaultClient(ctx context.Context, cfg Config) (*DefaultClient, error) {
	return newDefaultClient(ctx, cfg, NewTenantResolver())
}

func newDefaultClient(ctx context.Context, cfg Config, tenants *TenantResolver) (*DefaultClient, error) {
	logger := logr.FromContextOrDiscard(ctx)

	tenantID, err := tenants.Resolve(ctx, cfg.Tenant)
	if err != nil {
		return nil, err
	}
	logger.V(1).Info("resolved tenant", "tenant", cfg.Tenant, "tenantId", tenantID)

	credential, err := azidentity.NewClientSecretCredential(tenantID, cfg.ClientID, cfg.ClientSecret,
		&azidentity.ClientSecretCredentialOptions{ClientOptions: clientOptions()})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return newClientWithCredential(tenantID, cfg.SubscriptionID, credential)
}

func newClientWithCredential(tenantID, subscriptionID string, credential azcore.TokenCredential) (*DefaultClient, error) {
	factory, err := armresources.NewClientFactory(subscriptionID, credential, &arm.ClientOptions{ClientOptions: clientOptions()})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure resources client: %w", err)
	}

	return &DefaultClient{
		tenantID: tenantID,
		arm:      NewARMOperations(factory.NewResourceGroupsClient(), factory.NewDeploymentsClient()),
		logs:     NewLogAnalyticsClient(credential),
	}, nil
}

// ResourceManager returns the resource group and deployment operations
func (c *DefaultClient) ResourceManager() ResourceManager {
	return c.arm
}

// LogSearcher returns the Log Analytics search client
func (c *DefaultClient) LogSearcher() LogSearcher {
	return c.logs
}

// TenantID returns the resolved tenant GUID
func (c *DefaultClient) TenantID() string {
	return c.tenantID
}
