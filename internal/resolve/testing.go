/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package resolve

import (
	"github.com/stretchr/testify/mock"
)

// MockTemplateProcessor implements TemplateProcessor for testing
type MockTemplateProcessor struct {
	mock.Mock
}

func (m *MockTemplateProcessor) Process(templateContent string, variables map[string]any) (string, error) {
	args := m.Called(templateContent, variables)
	return args.String(0), args.Error(1)
}
