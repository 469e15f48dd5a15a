/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package deploy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orien/buildlab/internal/model"
)

// MockOperations implements Operations for testing
type MockOperations struct {
	mock.Mock
}

func (m *MockOperations) TestExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperations) EnsureDeleted(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockOperations) EnsureGroup(ctx context.Context, name, location string) error {
	args := m.Called(ctx, name, location)
	return args.Error(0)
}

func (m *MockOperations) Deploy(ctx context.Context, req model.DeploymentRequest) (model.Outputs, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Outputs), args.Error(1)
}

func (m *MockOperations) QueryLogs(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LogSearchResult), args.Error(1)
}
