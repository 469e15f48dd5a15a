/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
)

func newTestGroupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "testgroup",
		Short: "Report whether the resource group exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, config.ActionTestGroup)
			if err != nil {
				return err
			}
			settings := cfg.Group()

			exists, err := newOperations(settings.Credentials).TestExists(cmd.Context(), settings.GroupName)
			if err != nil {
				return fmt.Errorf("error checking resource group %s: %w", settings.GroupName, err)
			}

			state := "does not exist"
			if exists {
				state = "exists"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resource group %s %s\n", settings.GroupName, state)
			return nil
		},
	}
}
