/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/deploy"
	"github.com/orien/buildlab/internal/password"
	"github.com/orien/buildlab/internal/prompt"
	"github.com/orien/buildlab/internal/resolve"
)

const labTemplate = `$schema: https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#
contentVersion: 1.0.0.0
parameters:
  storageAccountName:
    type: string
  builderVmAdminPassword:
    type: securestring
  builderVmSize:
    type: string
resources: []
outputs:
  location:
    type: string
    value: "{{ .group_location }}"
`

var credentialArgs = []string{
	"--service-principal-id", "app-id",
	"--service-principal-key", "app-secret",
	"--tenant", "72f988bf-86f1-41af-91ab-2d7cd011db47",
	"--subscription-id", "sub-1",
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type harness struct {
	dir          string
	templatePath string
	ops          *deploy.MockOperations
	prompter     *prompt.MockPrompter
	credentials  []config.Credentials
}

// newHarness isolates the command tree from the user's config files and from Azure
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		dir:      t.TempDir(),
		ops:      &deploy.MockOperations{},
		prompter: &prompt.MockPrompter{},
	}
	h.templatePath = filepath.Join(h.dir, "cloudbuilder.yaml")
	require.NoError(t, os.WriteFile(h.templatePath, []byte(labTemplate), 0o644))

	oldResolver, oldOperations, oldPrompter := newResolver, newOperations, prompt.GetDefaultPrompter()
	t.Cleanup(func() {
		SetResolverFactory(oldResolver)
		SetOperationsFactory(oldOperations)
		prompt.SetPrompter(oldPrompter)
	})

	SetResolverFactory(func() *resolve.Resolver {
		r := resolve.NewResolver(resolve.Locations{})
		r.SetClock(func() time.Time { return fixedNow })
		r.SetPasswordGenerator(func(int, password.Policy) (string, error) { return "Generated-Pw1", nil })
		r.SetDefaultTemplatePath(h.templatePath)
		return r
	})
	SetOperationsFactory(func(c config.Credentials) deploy.Operations {
		h.credentials = append(h.credentials, c)
		return h.ops
	})
	prompt.SetPrompter(h.prompter)

	return h
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	root := RootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) assertExpectations(t *testing.T) {
	t.Helper()
	h.ops.AssertExpectations(t)
	h.prompter.AssertExpectations(t)
}

func withCredentials(args ...string) []string {
	return append(args, credentialArgs...)
}

func findCommand(root *cobra.Command, name string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
