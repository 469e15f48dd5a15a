/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmTemplateProcessor_Process_BasicSubstitution(t *testing.T) {
	processor := NewArmTemplateProcessor()

	template := `parameters:
  builderVmSize:
    type: string
    defaultValue: {{ .builder_vm_size }}
variables:
  location: {{ .group_location }}`

	variables := map[string]any{
		"builder_vm_size": "Standard_D2_v3",
		"group_location":  "westus2",
	}

	result, err := processor.Process(template, variables)

	require.NoError(t, err)
	assert.Contains(t, result, "defaultValue: Standard_D2_v3")
	assert.Contains(t, result, "location: westus2")
}

func TestArmTemplateProcessor_Process_LeavesArmExpressionsAlone(t *testing.T) {
	processor := NewArmTemplateProcessor()

	template := `name: "[parameters('storageAccountName')]"
id: "[resourceId('Microsoft.Storage/storageAccounts', parameters('storageAccountName'))]"`

	result, err := processor.Process(template, map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, template, result)
}

func TestArmTemplateProcessor_Process_SprigFunctions(t *testing.T) {
	processor := NewArmTemplateProcessor()

	tests := []struct {
		name      string
		template  string
		variables map[string]any
		expected  string
	}{
		{
			name:      "upper",
			template:  `{{ .group_name | upper }}`,
			variables: map[string]any{"group_name": "wintriallab"},
			expected:  "WINTRIALLAB",
		},
		{
			name:      "default",
			template:  `{{ .builder_vm_size | default "Standard_D2_v3" }}`,
			variables: map[string]any{"builder_vm_size": ""},
			expected:  "Standard_D2_v3",
		},
		{
			name:      "trunc storage name",
			template:  `{{ .storage_account_name | lower | trunc 5 }}`,
			variables: map[string]any{"storage_account_name": "LabStorage01"},
			expected:  "labst",
		},
		{
			name:      "quote",
			template:  `{{ .group_location | quote }}`,
			variables: map[string]any{"group_location": "westus2"},
			expected:  `"westus2"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := processor.Process(tt.template, tt.variables)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestArmTemplateProcessor_Process_ErrorCases(t *testing.T) {
	processor := NewArmTemplateProcessor()

	tests := []struct {
		name        string
		template    string
		variables   map[string]any
		errContains string
	}{
		{
			name:        "unclosed action",
			template:    `{{ .group_name`,
			variables:   map[string]any{},
			errContains: "failed to parse template",
		},
		{
			name:        "unknown function",
			template:    `{{ .group_name | nosuchfunc }}`,
			variables:   map[string]any{"group_name": "lab"},
			errContains: "failed to parse template",
		},
		{
			name:        "missing variable",
			template:    `{{ .not_configured }}`,
			variables:   map[string]any{},
			errContains: "failed to execute template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.Process(tt.template, tt.variables)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestArmTemplateProcessor_Process_EmptyTemplate(t *testing.T) {
	result, err := NewArmTemplateProcessor().Process("", nil)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestArmTemplateProcessor_Process_ArmExpressionHelpers(t *testing.T) {
	processor := NewArmTemplateProcessor()

	result, err := processor.Process(`size: "{{ armParameter "builderVmSize" }}"
nic: "{{ armVariable "nicName" }}"`, nil)

	require.NoError(t, err)
	assert.Equal(t, `size: "[parameters('builderVmSize')]"
nic: "[variables('nicName')]"`, result)
}

