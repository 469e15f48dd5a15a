/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/resolve"
)

func newConvertYAMLCommand() *cobra.Command {
	var printYAML bool

	cmd := &cobra.Command{
		Use:   "convertyaml",
		Short: "Convert the YAML template to the JSON Azure accepts",
		Long: `Render the ARM template and write its canonical JSON form next to it,
e.g. cloudbuilder.yaml becomes cloudbuilder.json. The JSON is byte for byte
what deploy submits to Azure.

With --print-yaml the rendered template is printed as YAML instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, config.ActionConvertYAML)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tmpl, err := renderTemplate(ctx, cfg)
			if err != nil {
				return err
			}

			if printYAML {
				out, err := tmpl.ToYAML()
				if err != nil {
					return err
				}
				_, _ = cmd.OutOrStdout().Write(out)
				return nil
			}

			path, err := resolve.ExportTemplate(ctx, tmpl, cfg.ARMTemplate)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printYAML, "print-yaml", false, "print the rendered template as YAML instead of writing JSON")
	return cmd
}
