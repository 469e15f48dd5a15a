/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/go-logr/logr"

	"github.com/orien/buildlab/internal/model"
)

// PollInterval is how often long-running ARM operations are polled
const PollInterval = 10 * time.Second

// ARMOperations provides blocking resource group and deployment operations
type ARMOperations struct {
	groups       ResourceGroupsClient
	deployments  DeploymentsClient
	pollInterval time.Duration
}

// NewARMOperations wraps the given ARM clients
func NewARMOperations(groups ResourceGroupsClient, deployments DeploymentsClient) *ARMOperations {
	return &ARMOperations{
		groups:       groups,
		deployments:  deployments,
		pollInterval: PollInterval,
	}
}

// ResourceGroupExists checks if a resource group exists
func (a *ARMOperations) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	_, err := a.groups.Get(ctx, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get resource group %q: %w", name, err)
	}
	return true, nil
}

// CreateOrUpdateResourceGroup creates the group or updates its location
func (a *ARMOperations) CreateOrUpdateResourceGroup(ctx context.Context, name, location string) error {
	_, err := a.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create or update resource group %q: %w", name, err)
	}
	return nil
}

// DeleteResourceGroup starts the deletion and waits for it to finish
func (a *ARMOperations) DeleteResourceGroup(ctx context.Context, name string) error {
	logger := logr.FromContextOrDiscard(ctx)

	poller, err := a.groups.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete resource group %q: %w", name, err)
	}

	logger.V(1).Info("waiting for resource group deletion", "group", name)
	if _, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: a.pollInterval}); err != nil {
		return fmt.Errorf("failed waiting for resource group %q to finish deleting: %w", name, err)
	}
	return nil
}

// CreateOrUpdateDeployment submits the deployment and waits for it to finish
func (a *ARMOperations) CreateOrUpdateDeployment(ctx context.Context, input DeploymentInput) (model.Outputs, error) {
	logger := logr.FromContextOrDiscard(ctx)

	poller, err := a.deployments.BeginCreateOrUpdate(ctx, input.GroupName, input.DeploymentName, deploymentOf(input), nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating deployment %q in resource group %q: %w", input.DeploymentName, input.GroupName, err)
	}

	logger.V(1).Info("waiting for deployment", "group", input.GroupName, "deployment", input.DeploymentName)
	result, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: a.pollInterval})
	if err != nil {
		return nil, fmt.Errorf("failed waiting for deployment %q in resource group %q to finish: %w", input.DeploymentName, input.GroupName, err)
	}

	if result.Properties == nil {
		return model.Outputs{}, nil
	}
	return ParseOutputs(result.Properties.Outputs)
}

// ValidateDeployment asks Azure to validate the deployment without creating anything
func (a *ARMOperations) ValidateDeployment(ctx context.Context, input DeploymentInput) error {
	poller, err := a.deployments.BeginValidate(ctx, input.GroupName, input.DeploymentName, deploymentOf(input), nil)
	if err != nil {
		return fmt.Errorf("failed validating deployment %q in resource group %q: %w", input.DeploymentName, input.GroupName, err)
	}

	result, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: a.pollInterval})
	if err != nil {
		return fmt.Errorf("deployment %q failed validation: %w", input.DeploymentName, err)
	}
	if result.Error != nil && result.Error.Message != nil {
		return fmt.Errorf("deployment %q failed validation: %s", input.DeploymentName, *result.Error.Message)
	}
	return nil
}

func deploymentOf(input DeploymentInput) armresources.Deployment {
	mode := armresources.DeploymentModeIncremental
	if input.Mode == model.DeploymentModeComplete {
		mode = armresources.DeploymentModeComplete
	}
	return armresources.Deployment{
		Properties: &armresources.DeploymentProperties{
			Mode:       to.Ptr(mode),
			Template:   input.Template.Document(),
			Parameters: input.Parameters,
		},
	}
}

// ParseOutputs converts the outputs of a finished deployment,
// shaped {"name": {"type": ..., "value": ...}}
func ParseOutputs(raw any) (model.Outputs, error) {
	outputs := model.Outputs{}
	if raw == nil {
		return outputs, nil
	}
	outputMap, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to read deployment outputs, was %T", raw)
	}
	for name, entry := range outputMap {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("failed to read deployment output %q, was %T", name, entry)
		}
		typ, _ := fields["type"].(string)
		outputs[name] = model.OutputValue{Type: typ, Value: fields["value"]}
	}
	return outputs, nil
}
