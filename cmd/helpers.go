/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/deploy"
	"github.com/orien/buildlab/internal/describe"
	"github.com/orien/buildlab/internal/model"
	"github.com/orien/buildlab/internal/resolve"
)

var (
	// newResolver can be replaced for testing
	newResolver = func() *resolve.Resolver {
		return resolve.NewResolver(resolve.DefaultLocations())
	}

	// newOperations can be replaced for testing
	newOperations = func(credentials config.Credentials) deploy.Operations {
		return deploy.NewOrchestrator(credentials)
	}
)

// SetResolverFactory allows injection of a resolver (for testing)
func SetResolverFactory(f func() *resolve.Resolver) {
	newResolver = f
}

// SetOperationsFactory allows injection of the lab operations (for testing)
func SetOperationsFactory(f func(config.Credentials) deploy.Operations) {
	newOperations = f
}

// resolveConfig merges the command-line flags with the config files for action.
// With debug enabled the logger becomes verbose and every key's source is shown.
func resolveConfig(cmd *cobra.Command, action config.Action) (config.Config, error) {
	values, err := commandLineValues(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := newResolver().Resolve(cmd.Context(), action, values)
	if err != nil {
		return config.Config{}, err
	}

	if cfg.Debug {
		cmd.SetContext(logr.NewContext(cmd.Context(), newLogger(cmd.ErrOrStderr(), true)))
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), describe.FormatConfigSources(cfg, styles(cmd)))
	}
	return cfg, nil
}

// renderTemplate loads the configured template. A config key the template
// needs but the resolved config lacks is reported against cfg's action.
func renderTemplate(ctx context.Context, cfg config.Config) (*model.Template, error) {
	tmpl, err := resolve.NewTemplateLoader().Load(ctx, cfg.ARMTemplate, resolve.TemplateVariables(cfg))
	if err != nil {
		var missing *config.MissingParameterError
		if errors.As(err, &missing) && missing.Action == "" {
			missing.Action = cfg.Action
		}
		return nil, err
	}
	return tmpl, nil
}

// loadTemplate renders the configured template; with debug enabled its JSON is exported too
func loadTemplate(ctx context.Context, cfg config.Config) (*model.Template, error) {
	tmpl, err := renderTemplate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		if _, err := resolve.ExportTemplate(ctx, tmpl, cfg.ARMTemplate); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

func styles(cmd *cobra.Command) *describe.Styles {
	return describe.NewStyles(describe.ShouldUseColour(cmd.OutOrStdout()))
}
