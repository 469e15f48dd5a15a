/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/password"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestResolver(t *testing.T, locations Locations) *Resolver {
	t.Helper()
	r := NewResolver(locations)
	r.SetClock(func() time.Time { return fixedNow })
	r.SetPasswordGenerator(func(int, password.Policy) (string, error) { return "Generated-Pw1", nil })
	r.SetDefaultTemplatePath("/opt/buildlab/templates/cloudbuilder.yaml")
	return r
}

func writeIni(t *testing.T, dir, name string, values map[string]string) string {
	t.Helper()
	if values == nil {
		return filepath.Join(dir, name+".absent")
	}
	content := "[buildlab]\n"
	for k, v := range values {
		content += fmt.Sprintf("%s = %s\n", k, v)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_UserFileOverridesMasterFile(t *testing.T) {
	dir := t.TempDir()
	locations := Locations{
		Master: writeIni(t, dir, "master.ini", map[string]string{"storage_account_name": "a", "arm_template": "/t.yaml"}),
		User:   writeIni(t, dir, "user.ini", map[string]string{"storage_account_name": "b"}),
	}

	r := newTestResolver(t, locations)
	values, sources, err := r.provider(config.Values{}).Load(context.Background())
	require.NoError(t, err)
	merged, mergedSources := Merge(values, sources, config.Values{})

	assert.Equal(t, "b", merged[config.KeyStorageAccountName])
	assert.Equal(t, config.SourceUserFile, mergedSources[config.KeyStorageAccountName])
}

func TestResolve_PairwisePrecedence(t *testing.T) {
	// For every pair of sources holding the same key, the higher precedence source wins
	type source struct {
		name  string
		level config.Source
	}
	sources := []source{
		{"master", config.SourceMasterFile},
		{"user", config.SourceUserFile},
		{"explicit", config.SourceExplicitFile},
		{"cli", config.SourceCommandLine},
	}

	for i, low := range sources {
		for _, high := range sources[i+1:] {
			t.Run(low.name+"<"+high.name, func(t *testing.T) {
				dir := t.TempDir()
				fileValues := map[string]map[string]string{}
				cli := config.Values{}
				for _, s := range []source{low, high} {
					if s.level == config.SourceCommandLine {
						cli[config.KeyGroupName] = s.name
					} else {
						fileValues[s.name] = map[string]string{"group_name": s.name}
					}
				}

				locations := Locations{
					Master: writeIni(t, dir, "master.ini", fileValues["master"]),
					User:   writeIni(t, dir, "user.ini", fileValues["user"]),
				}
				if explicit, ok := fileValues["explicit"]; ok {
					cli[config.KeyConfigFile] = writeIni(t, dir, "explicit.ini", explicit)
				}

				cfg, err := newTestResolver(t, locations).Resolve(context.Background(), config.ActionConvertYAML, cli)

				require.NoError(t, err)
				assert.Equal(t, high.name, cfg.GroupName)
				assert.Equal(t, high.level, cfg.Source(config.KeyGroupName))
			})
		}
	}
}

func TestResolve_SingleSourceValueIsUsed(t *testing.T) {
	dir := t.TempDir()
	explicit := writeIni(t, dir, "explicit.ini", map[string]string{"workspace_name": "explicit-ws"})
	locations := Locations{
		Master: writeIni(t, dir, "master.ini", map[string]string{"group_location": "westus2"}),
		User:   writeIni(t, dir, "user.ini", map[string]string{"builder_vm_size": "Standard_E2_v3"}),
	}
	cli := config.Values{config.KeyConfigFile: explicit, config.KeyTenant: "example.onmicrosoft.com"}

	cfg, err := newTestResolver(t, locations).Resolve(context.Background(), config.ActionConvertYAML, cli)

	require.NoError(t, err)
	assert.Equal(t, "westus2", cfg.GroupLocation)
	assert.Equal(t, "Standard_E2_v3", cfg.BuilderVMSize)
	assert.Equal(t, "explicit-ws", cfg.WorkspaceName)
	assert.Equal(t, "example.onmicrosoft.com", cfg.Tenant)
}

func TestResolve_CommandLineFalseOverridesFileTrue(t *testing.T) {
	dir := t.TempDir()
	locations := Locations{Master: writeIni(t, dir, "master.ini", map[string]string{"delete_first": "true"})}

	cfg, err := newTestResolver(t, locations).Resolve(context.Background(), config.ActionConvertYAML, config.Values{config.KeyDeleteFirst: false})

	require.NoError(t, err)
	assert.False(t, cfg.DeleteFirst)
	assert.Equal(t, config.SourceCommandLine, cfg.Source(config.KeyDeleteFirst))
}

func TestResolve_AbsentFlagKeepsFileValue(t *testing.T) {
	dir := t.TempDir()
	locations := Locations{Master: writeIni(t, dir, "master.ini", map[string]string{"delete_first": "true"})}

	cfg, err := newTestResolver(t, locations).Resolve(context.Background(), config.ActionConvertYAML, config.Values{})

	require.NoError(t, err)
	assert.True(t, cfg.DeleteFirst)
}

func TestResolve_MissingExplicitConfigFile(t *testing.T) {
	cli := config.Values{config.KeyConfigFile: filepath.Join(t.TempDir(), "nope.ini")}

	_, err := newTestResolver(t, Locations{}).Resolve(context.Background(), config.ActionConvertYAML, cli)

	var missing *config.MissingConfigFileError
	assert.ErrorAs(t, err, &missing)
}

func TestResolve_AppliesRuntimeDefaults(t *testing.T) {
	cfg, err := newTestResolver(t, Locations{}).Resolve(context.Background(), config.ActionConvertYAML, config.Values{})

	require.NoError(t, err)
	assert.Equal(t, "Generated-Pw1", cfg.BuilderVMAdminPassword)
	assert.Equal(t, "buildlab-20250314-150926", cfg.DeploymentName)
	assert.Equal(t, "/opt/buildlab/templates/cloudbuilder.yaml", cfg.ARMTemplate)
	assert.Equal(t, config.SourceRuntimeDefault, cfg.Source(config.KeyDeploymentName))
}

func TestResolve_DeployMissingParameters(t *testing.T) {
	cli := config.Values{config.KeyGroupName: "lab"}

	_, err := newTestResolver(t, Locations{}).Resolve(context.Background(), config.ActionDeploy, cli)

	var missing *config.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Keys, config.KeyStorageAccountName)
	assert.Contains(t, missing.Keys, config.KeySubscriptionID)
	assert.NotContains(t, missing.Keys, config.KeyBuilderVMAdminPassword, "password has a runtime default")
	assert.NotContains(t, missing.Keys, config.KeyDeploymentName, "deployment name has a runtime default")
}

func TestResolve_InvalidBooleanInFile(t *testing.T) {
	dir := t.TempDir()
	locations := Locations{User: writeIni(t, dir, "user.ini", map[string]string{"assume_yes": "sure"})}

	_, err := newTestResolver(t, locations).Resolve(context.Background(), config.ActionGenPass, config.Values{})

	var boolErr *config.InvalidBooleanValueError
	assert.ErrorAs(t, err, &boolErr)
}

func TestApplyRuntimeDefaults_NeverOverwritesAndIsIdempotent(t *testing.T) {
	r := newTestResolver(t, Locations{})
	values := config.Values{
		config.KeyBuilderVMAdminPassword: "Mine-123",
		config.KeyDeploymentName:         "my-deployment",
	}
	sources := map[config.Key]config.Source{
		config.KeyBuilderVMAdminPassword: config.SourceUserFile,
		config.KeyDeploymentName:         config.SourceCommandLine,
	}

	once, onceSources, err := r.ApplyRuntimeDefaults(values, sources)
	require.NoError(t, err)
	twice, twiceSources, err := r.ApplyRuntimeDefaults(once, onceSources)
	require.NoError(t, err)

	assert.Equal(t, "Mine-123", once[config.KeyBuilderVMAdminPassword])
	assert.Equal(t, "my-deployment", once[config.KeyDeploymentName])
	assert.Equal(t, "/opt/buildlab/templates/cloudbuilder.yaml", once[config.KeyARMTemplate])
	assert.Equal(t, once, twice)
	assert.Equal(t, onceSources, twiceSources)
	assert.Len(t, values, 2, "input values must not be modified")
}

func TestApplyRuntimeDefaults_GeneratorFailure(t *testing.T) {
	r := newTestResolver(t, Locations{})
	r.SetPasswordGenerator(func(int, password.Policy) (string, error) { return "", fmt.Errorf("no entropy") })

	_, _, err := r.ApplyRuntimeDefaults(config.Values{}, nil)

	assert.ErrorContains(t, err, "no entropy")
}

func TestApplyRuntimeDefaults_RealPasswordSatisfiesPolicy(t *testing.T) {
	r := NewResolver(Locations{})

	values, _, err := r.ApplyRuntimeDefaults(config.Values{}, nil)

	require.NoError(t, err)
	pw, ok := values[config.KeyBuilderVMAdminPassword].(string)
	require.True(t, ok)
	assert.Len(t, pw, 24)
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	files := config.Values{config.KeyGroupName: "file"}
	fileSources := map[config.Key]config.Source{config.KeyGroupName: config.SourceMasterFile}

	merged, sources := Merge(files, fileSources, config.Values{config.KeyGroupName: "cli"})

	assert.Equal(t, "cli", merged[config.KeyGroupName])
	assert.Equal(t, config.SourceCommandLine, sources[config.KeyGroupName])
	assert.Equal(t, "file", files[config.KeyGroupName])
	assert.Equal(t, config.SourceMasterFile, fileSources[config.KeyGroupName])
}

func TestApplyRuntimeDefaults_PasswordFollowsConfiguredPolicy(t *testing.T) {
	tests := []struct {
		name       string
		values     config.Values
		wantLength int
		wantPolicy password.Policy
	}{
		{
			name:       "defaults",
			values:     config.Values{},
			wantLength: password.DefaultLength,
			wantPolicy: password.DefaultPolicy,
		},
		{
			name:       "configured length without symbols",
			values:     config.Values{config.KeyPasswordLength: 32, config.KeyPasswordSymbols: false},
			wantLength: 32,
			wantPolicy: password.Policy{Symbols: false},
		},
		{
			name:       "raw strings",
			values:     config.Values{config.KeyPasswordLength: "16", config.KeyPasswordSymbols: "no"},
			wantLength: 16,
			wantPolicy: password.Policy{Symbols: false},
		},
		{
			name:       "zero length keeps the default",
			values:     config.Values{config.KeyPasswordLength: 0},
			wantLength: password.DefaultLength,
			wantPolicy: password.DefaultPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, Locations{})
			var gotLength int
			var gotPolicy password.Policy
			r.SetPasswordGenerator(func(length int, policy password.Policy) (string, error) {
				gotLength, gotPolicy = length, policy
				return "Generated-Pw1", nil
			})

			_, _, err := r.ApplyRuntimeDefaults(tt.values, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLength, gotLength)
			assert.Equal(t, tt.wantPolicy, gotPolicy)
		})
	}
}

func TestApplyRuntimeDefaults_InvalidPasswordLength(t *testing.T) {
	r := newTestResolver(t, Locations{})

	_, _, err := r.ApplyRuntimeDefaults(config.Values{config.KeyPasswordLength: "long"}, nil)

	var invalid *config.InvalidIntegerValueError
	assert.ErrorAs(t, err, &invalid)
}

func TestApplyRuntimeDefaults_GeneratedPasswordUsesFileSettings(t *testing.T) {
	dir := t.TempDir()
	master := writeIni(t, dir, "master.ini", map[string]string{
		"password_length":  "30",
		"password_symbols": "false",
	})
	r := NewResolver(Locations{Master: master})
	r.SetDefaultTemplatePath("/opt/buildlab/templates/cloudbuilder.yaml")

	values, _, err := r.ApplyRuntimeDefaults(mustLoad(t, r), nil)

	require.NoError(t, err)
	pw := values[config.KeyBuilderVMAdminPassword].(string)
	assert.Len(t, pw, 30)
	assert.NotRegexp(t, "[^a-zA-Z0-9]", pw)
	assert.True(t, password.Policy{Symbols: false}.Satisfies(pw))
}

func mustLoad(t *testing.T, r *Resolver) config.Values {
	t.Helper()
	values, _, err := r.provider(config.Values{}).Load(context.Background())
	require.NoError(t, err)
	return values
}
