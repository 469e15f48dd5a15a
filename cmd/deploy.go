/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/describe"
	"github.com/orien/buildlab/internal/model"
)

func newDeployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the build lab template",
		Long: `Deploy the ARM template into the resource group, creating the group if needed.

With --delete-first the resource group is deleted, and the deletion awaited,
before it is recreated and the template deployed. Deployment outputs are
printed once Azure reports the deployment complete.

Examples:
  buildlab deploy --storage-account-name mylabstore
  buildlab deploy --delete-first -c ~/lab.ini`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeployment(cmd, config.ActionDeploy)
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the build lab template with Azure",
		Long: `Ask Azure to validate the deployment without creating any resources.

The resource group is created if it does not exist, since Azure validates
deployments against an existing group.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeployment(cmd, config.ActionValidate)
		},
	}
}

func runDeployment(cmd *cobra.Command, action config.Action) error {
	cfg, err := resolveConfig(cmd, action)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tmpl, err := loadTemplate(ctx, cfg)
	if err != nil {
		return err
	}

	settings := cfg.Deploy()
	req := model.DeploymentRequest{
		GroupName:      settings.GroupName,
		Location:       settings.GroupLocation,
		Template:       tmpl,
		Parameters:     settings.TemplateParameters,
		DeploymentName: settings.DeploymentName,
		Mode:           model.DeploymentModeIncremental,
		DeleteFirst:    settings.DeleteFirst && action == config.ActionDeploy,
		ValidateOnly:   action == config.ActionValidate,
	}

	outputs, err := newOperations(settings.Credentials).Deploy(ctx, req)
	if err != nil {
		return fmt.Errorf("error deploying %s to resource group %s: %w", req.DeploymentName, req.GroupName, err)
	}

	out := cmd.OutOrStdout()
	if req.ValidateOnly {
		_, _ = fmt.Fprintf(out, "Template %s is valid for resource group %s\n", settings.TemplatePath, req.GroupName)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Deployment %s completed.\n", req.DeploymentName)
	_, _ = fmt.Fprint(out, describe.FormatOutputs(outputs, styles(cmd)))
	return nil
}
