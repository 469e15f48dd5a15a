/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package prompt

import (
	"github.com/stretchr/testify/mock"
)

// MockPrompter implements Prompter for testing
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) ConfirmDeletion(groupName string) (bool, error) {
	args := m.Called(groupName)
	return args.Bool(0), args.Error(1)
}
