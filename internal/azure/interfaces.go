/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/orien/buildlab/internal/model"
)

// ResourceGroupsClient is the subset of the ARM resource groups client buildlab uses.
// This allows for easier testing with mock implementations.
type ResourceGroupsClient interface {
	Get(ctx context.Context, resourceGroupName string, options *armresources.ResourceGroupsClientGetOptions) (
		armresources.ResourceGroupsClientGetResponse, error)
	CreateOrUpdate(ctx context.Context, resourceGroupName string, parameters armresources.ResourceGroup,
		options *armresources.ResourceGroupsClientCreateOrUpdateOptions) (
		armresources.ResourceGroupsClientCreateOrUpdateResponse, error)
	BeginDelete(ctx context.Context, resourceGroupName string,
		options *armresources.ResourceGroupsClientBeginDeleteOptions) (
		*runtime.Poller[armresources.ResourceGroupsClientDeleteResponse], error)
}

// DeploymentsClient is the subset of the ARM deployments client buildlab uses
type DeploymentsClient interface {
	BeginCreateOrUpdate(ctx context.Context, resourceGroupName string, deploymentName string, parameters armresources.Deployment,
		options *armresources.DeploymentsClientBeginCreateOrUpdateOptions) (
		*runtime.Poller[armresources.DeploymentsClientCreateOrUpdateResponse], error)
	BeginValidate(ctx context.Context, resourceGroupName string, deploymentName string, parameters armresources.Deployment,
		options *armresources.DeploymentsClientBeginValidateOptions) (
		*runtime.Poller[armresources.DeploymentsClientValidateResponse], error)
}

// Ensure that the actual ARM clients implement our interfaces
var (
	_ ResourceGroupsClient = (*armresources.ResourceGroupsClient)(nil)
	_ DeploymentsClient    = (*armresources.DeploymentsClient)(nil)
)

// Ensure that ARMOperations implements ResourceManager
var _ ResourceManager = (*ARMOperations)(nil)

// Ensure that LogAnalyticsClient implements LogSearcher
var _ LogSearcher = (*LogAnalyticsClient)(nil)

// ResourceManager is the blocking resource group and deployment API the orchestrator drives
type ResourceManager interface {
	// ResourceGroupExists reports whether the group exists; not found is (false, nil)
	ResourceGroupExists(ctx context.Context, name string) (bool, error)
	// CreateOrUpdateResourceGroup is idempotent
	CreateOrUpdateResourceGroup(ctx context.Context, name, location string) error
	// DeleteResourceGroup blocks until Azure confirms the deletion
	DeleteResourceGroup(ctx context.Context, name string) error
	// CreateOrUpdateDeployment blocks until the deployment finishes and returns its outputs
	CreateOrUpdateDeployment(ctx context.Context, input DeploymentInput) (model.Outputs, error)
	// ValidateDeployment asks Azure to validate the deployment without creating anything
	ValidateDeployment(ctx context.Context, input DeploymentInput) error
}

// LogSearcher runs Log Analytics searches
type LogSearcher interface {
	Search(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error)
}

// DeploymentInput is a deployment with parameters already in ARM's {"value": v} shape
type DeploymentInput struct {
	GroupName      string
	DeploymentName string
	Template       *model.Template
	Parameters     map[string]model.ParameterValue
	Mode           model.DeploymentMode
}
