/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package deploy drives the resource group and deployment lifecycle of a lab.
package deploy

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/orien/buildlab/internal/azure"
	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/model"
)

// Operations defines the lab lifecycle operations the commands use
type Operations interface {
	TestExists(ctx context.Context, name string) (bool, error)
	EnsureDeleted(ctx context.Context, name string) error
	EnsureGroup(ctx context.Context, name, location string) error
	Deploy(ctx context.Context, req model.DeploymentRequest) (model.Outputs, error)
	QueryLogs(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error)
}

// ClientFactory creates an authenticated Azure client
type ClientFactory func(ctx context.Context, cfg azure.Config) (azure.Client, error)

// DefaultClientFactory authenticates with a client secret credential
func DefaultClientFactory(ctx context.Context, cfg azure.Config) (azure.Client, error) {
	return azure.NewDefaultClient(ctx, cfg)
}

// Orchestrator implements Operations against Azure. The authenticated client
// is created on first use and reused for the orchestrator's lifetime.
type Orchestrator struct {
	credentials config.Credentials
	newClient   ClientFactory
	client      azure.Client
}

// Ensure that Orchestrator implements Operations
var _ Operations = (*Orchestrator)(nil)

// NewOrchestrator creates an orchestrator that authenticates with the given credentials
func NewOrchestrator(credentials config.Credentials) *Orchestrator {
	return NewOrchestratorWithFactory(credentials, DefaultClientFactory)
}

// NewOrchestratorWithFactory creates an orchestrator with a custom client factory (for testing)
func NewOrchestratorWithFactory(credentials config.Credentials, factory ClientFactory) *Orchestrator {
	return &Orchestrator{
		credentials: credentials,
		newClient:   factory,
	}
}

func (o *Orchestrator) azureClient(ctx context.Context) (azure.Client, error) {
	if o.client != nil {
		return o.client, nil
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("authenticating", "tenant", o.credentials.Tenant, "clientId", o.credentials.ClientID)
	client, err := o.newClient(ctx, azure.Config{
		ClientID:       o.credentials.ClientID,
		ClientSecret:   o.credentials.ClientSecret,
		Tenant:         o.credentials.Tenant,
		SubscriptionID: o.credentials.SubscriptionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Azure: %w", err)
	}
	o.client = client
	return client, nil
}

func (o *Orchestrator) resources(ctx context.Context) (azure.ResourceManager, error) {
	client, err := o.azureClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.ResourceManager(), nil
}

// TenantID returns the tenant GUID, authenticating first if needed
func (o *Orchestrator) TenantID(ctx context.Context) (string, error) {
	client, err := o.azureClient(ctx)
	if err != nil {
		return "", err
	}
	return client.TenantID(), nil
}

// TestExists reports whether the resource group exists
func (o *Orchestrator) TestExists(ctx context.Context, name string) (bool, error) {
	rm, err := o.resources(ctx)
	if err != nil {
		return false, err
	}
	return rm.ResourceGroupExists(ctx, name)
}

// EnsureDeleted deletes the resource group if it exists and waits for the deletion
func (o *Orchestrator) EnsureDeleted(ctx context.Context, name string) error {
	logger := logr.FromContextOrDiscard(ctx)

	rm, err := o.resources(ctx)
	if err != nil {
		return err
	}

	exists, err := rm.ResourceGroupExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info("resource group already absent", "group", name)
		return nil
	}

	logger.Info("deleting resource group", "group", name)
	return rm.DeleteResourceGroup(ctx, name)
}

// EnsureGroup creates the resource group or updates it in place
func (o *Orchestrator) EnsureGroup(ctx context.Context, name, location string) error {
	rm, err := o.resources(ctx)
	if err != nil {
		return err
	}

	logr.FromContextOrDiscard(ctx).Info("ensuring resource group", "group", name, "location", location)
	return rm.CreateOrUpdateResourceGroup(ctx, name, location)
}

// Deploy deploys the template into the resource group, optionally deleting the
// group first. A validate-only request returns nil outputs.
func (o *Orchestrator) Deploy(ctx context.Context, req model.DeploymentRequest) (model.Outputs, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if req.Template == nil {
		return nil, fmt.Errorf("deployment %q has no template", req.DeploymentName)
	}

	if req.DeleteFirst {
		if err := o.EnsureDeleted(ctx, req.GroupName); err != nil {
			return nil, err
		}
	}

	if err := o.EnsureGroup(ctx, req.GroupName, req.Location); err != nil {
		return nil, err
	}

	rm, err := o.resources(ctx)
	if err != nil {
		return nil, err
	}

	input := azure.DeploymentInput{
		GroupName:      req.GroupName,
		DeploymentName: req.DeploymentName,
		Template:       req.Template,
		Parameters:     model.WrapParameters(req.Parameters),
		Mode:           req.EffectiveMode(),
	}

	if req.ValidateOnly {
		logger.Info("validating deployment", "group", req.GroupName, "deployment", req.DeploymentName)
		return nil, rm.ValidateDeployment(ctx, input)
	}

	logger.Info("deploying", "group", req.GroupName, "deployment", req.DeploymentName, "mode", string(input.Mode))
	outputs, err := rm.CreateOrUpdateDeployment(ctx, input)
	if err != nil {
		return nil, err
	}
	logger.Info("deployment complete", "group", req.GroupName, "deployment", req.DeploymentName, "outputs", len(outputs))
	return outputs, nil
}

// QueryLogs runs a Log Analytics search
func (o *Orchestrator) QueryLogs(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error) {
	client, err := o.azureClient(ctx)
	if err != nil {
		return nil, err
	}
	if query.SubscriptionID == "" {
		query.SubscriptionID = o.credentials.SubscriptionID
	}
	return client.LogSearcher().Search(ctx, query)
}
