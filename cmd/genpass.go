/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/password"
)

func newGenPassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genpass",
		Short: "Generate a password suitable for the builder VM",
		Long: `Generate a random password containing lower and upper case letters and
digits. With --password-symbols it also contains one of the shell-safe
symbols ` + password.ShellSafeSymbols + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, config.ActionGenPass)
			if err != nil {
				return err
			}
			settings := cfg.Password()

			pw, err := password.Generate(settings.Length, password.Policy{Symbols: settings.Symbols})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
}
