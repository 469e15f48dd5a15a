/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/stretchr/testify/mock"

	"github.com/orien/buildlab/internal/model"
)

// MockClient implements Client for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ResourceManager() ResourceManager {
	args := m.Called()
	return args.Get(0).(ResourceManager)
}

func (m *MockClient) LogSearcher() LogSearcher {
	args := m.Called()
	return args.Get(0).(LogSearcher)
}

func (m *MockClient) TenantID() string {
	args := m.Called()
	return args.String(0)
}

// MockResourceManager implements ResourceManager for testing
type MockResourceManager struct {
	mock.Mock
}

func (m *MockResourceManager) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockResourceManager) CreateOrUpdateResourceGroup(ctx context.Context, name, location string) error {
	args := m.Called(ctx, name, location)
	return args.Error(0)
}

func (m *MockResourceManager) DeleteResourceGroup(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockResourceManager) CreateOrUpdateDeployment(ctx context.Context, input DeploymentInput) (model.Outputs, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Outputs), args.Error(1)
}

func (m *MockResourceManager) ValidateDeployment(ctx context.Context, input DeploymentInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockLogSearcher implements LogSearcher for testing
type MockLogSearcher struct {
	mock.Mock
}

func (m *MockLogSearcher) Search(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogSearchResult), args.Error(1)
}

// MockResourceGroupsClient implements ResourceGroupsClient for testing
type MockResourceGroupsClient struct {
	mock.Mock
}

func (m *MockResourceGroupsClient) Get(ctx context.Context, resourceGroupName string, options *armresources.ResourceGroupsClientGetOptions) (armresources.ResourceGroupsClientGetResponse, error) {
	args := m.Called(ctx, resourceGroupName, options)
	return args.Get(0).(armresources.ResourceGroupsClientGetResponse), args.Error(1)
}

func (m *MockResourceGroupsClient) CreateOrUpdate(ctx context.Context, resourceGroupName string, parameters armresources.ResourceGroup, options *armresources.ResourceGroupsClientCreateOrUpdateOptions) (armresources.ResourceGroupsClientCreateOrUpdateResponse, error) {
	args := m.Called(ctx, resourceGroupName, parameters, options)
	return args.Get(0).(armresources.ResourceGroupsClientCreateOrUpdateResponse), args.Error(1)
}

func (m *MockResourceGroupsClient) BeginDelete(ctx context.Context, resourceGroupName string, options *armresources.ResourceGroupsClientBeginDeleteOptions) (*runtime.Poller[armresources.ResourceGroupsClientDeleteResponse], error) {
	args := m.Called(ctx, resourceGroupName, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armresources.ResourceGroupsClientDeleteResponse]), args.Error(1)
}

// MockDeploymentsClient implements DeploymentsClient for testing
type MockDeploymentsClient struct {
	mock.Mock
}

func (m *MockDeploymentsClient) BeginCreateOrUpdate(ctx context.Context, resourceGroupName string, deploymentName string, parameters armresources.Deployment, options *armresources.DeploymentsClientBeginCreateOrUpdateOptions) (*runtime.Poller[armresources.DeploymentsClientCreateOrUpdateResponse], error) {
	args := m.Called(ctx, resourceGroupName, deploymentName, parameters, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armresources.DeploymentsClientCreateOrUpdateResponse]), args.Error(1)
}

func (m *MockDeploymentsClient) BeginValidate(ctx context.Context, resourceGroupName string, deploymentName string, parameters armresources.Deployment, options *armresources.DeploymentsClientBeginValidateOptions) (*runtime.Poller[armresources.DeploymentsClientValidateResponse], error) {
	args := m.Called(ctx, resourceGroupName, deploymentName, parameters, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runtime.Poller[armresources.DeploymentsClientValidateResponse]), args.Error(1)
}

// NewResponseError builds an azcore.ResponseError as Azure would return it (for testing)
func NewResponseError(statusCode int, errorCode string) error {
	req, _ := http.NewRequest(http.MethodGet, "https://management.azure.com/subscriptions/test", nil)
	body := fmt.Sprintf(`{"error":{"code":%q,"message":"test error"}}`, errorCode)
	return runtime.NewResponseError(&http.Response{
		Status:     http.StatusText(statusCode),
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	})
}
