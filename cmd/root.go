/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/dusted-go/logging/prettylog"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/version"
)

// RootCommand builds the buildlab command tree
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "buildlab",
		Short: "Provision and tear down an Azure build lab",
		Long: `Buildlab provisions a resource group holding a storage account, a builder VM
sized for nested virtualisation and a Log Analytics workspace, all described by
an ARM template authored in YAML.

Configuration comes from, highest precedence first: command-line flags, the
file named by --config-file, the per-user config file and the master config
file installed next to the executable.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool(config.KeyDebug.FlagName())
			cmd.SetContext(logr.NewContext(cmd.Context(), newLogger(cmd.ErrOrStderr(), debug)))
		},
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetVersionTemplate(version.Info() + "\n")
	registerConfigFlags(root.PersistentFlags())

	root.AddCommand(
		newConvertYAMLCommand(),
		newDeployCommand(),
		newValidateCommand(),
		newDeleteCommand(),
		newTestGroupCommand(),
		newLogCommand(),
		newGenPassCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := fang.Execute(ctx, RootCommand(),
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.GitCommit),
	)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// newLogger writes human-readable logs to w; debug enables V(1) messages
func newLogger(w io.Writer, debug bool) logr.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	prettyHandler := prettylog.New(&slog.HandlerOptions{
		Level:       level,
		AddSource:   false,
		ReplaceAttr: nil,
	}, prettylog.WithDestinationWriter(w))
	return logr.FromSlogHandler(prettyHandler)
}
