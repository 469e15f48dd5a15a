/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/prompt"
)

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the build lab resource group",
		Long: `Delete the resource group and everything in it, waiting until Azure
confirms the deletion. Deleting a group that does not exist succeeds.

You are asked to confirm unless --yes is given.

CAUTION: Deletion is destructive and cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, config.ActionDelete)
			if err != nil {
				return err
			}
			settings := cfg.Group()

			if !cfg.AssumeYes {
				confirmed, err := prompt.ConfirmDeletion(settings.GroupName)
				if err != nil {
					return fmt.Errorf("failed to get user confirmation: %w", err)
				}
				if !confirmed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
					return nil
				}
			}

			if err := newOperations(settings.Credentials).EnsureDeleted(cmd.Context(), settings.GroupName); err != nil {
				return fmt.Errorf("error deleting resource group %s: %w", settings.GroupName, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resource group %s deleted\n", settings.GroupName)
			return nil
		},
	}
}
