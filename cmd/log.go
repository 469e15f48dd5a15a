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

func newLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Search the lab's Log Analytics workspace",
		Long: `Run a search against the Log Analytics workspace over the last 24 hours.

The search is polled once a second until Azure reports it complete.

Examples:
  buildlab log --workspace-name labws --log-query 'Heartbeat | take 10'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, config.ActionLog)
			if err != nil {
				return err
			}
			settings := cfg.Log()

			result, err := newOperations(settings.Credentials).QueryLogs(cmd.Context(), model.LogQuery{
				SubscriptionID: settings.SubscriptionID,
				GroupName:      settings.GroupName,
				WorkspaceName:  settings.WorkspaceName,
				Query:          settings.Query,
				Top:            settings.ResultCount,
			})
			if err != nil {
				return fmt.Errorf("error searching workspace %s: %w", settings.WorkspaceName, err)
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), describe.FormatLogResult(result, styles(cmd)))
			return nil
		},
	}
}
