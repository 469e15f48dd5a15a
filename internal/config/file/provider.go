/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package file reads buildlab settings from ini files.
// Each file is a flat list of key/value pairs, either at the top of the file
// or inside a [buildlab] section.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"gopkg.in/ini.v1"

	"github.com/orien/buildlab/internal/config"
)

// SectionName is the optional section holding buildlab settings
const SectionName = "buildlab"

// Layer is one config file in the precedence chain
type Layer struct {
	Path   string
	Source config.Source
	// Required layers must exist; optional layers are skipped when absent
	Required bool
}

// Provider reads and merges config file layers.
// Layers are applied in order, so later layers override earlier ones key by key.
type Provider struct {
	layers []Layer
}

// NewProvider creates a Provider for the given layers, lowest precedence first
func NewProvider(layers ...Layer) *Provider {
	return &Provider{layers: layers}
}

// Layers returns the configured layers
func (p *Provider) Layers() []Layer {
	out := make([]Layer, len(p.layers))
	copy(out, p.layers)
	return out
}

// Load reads every layer and returns the merged values and, for each key,
// the layer source that supplied the winning value
func (p *Provider) Load(ctx context.Context) (config.Values, map[config.Key]config.Source, error) {
	logger := logr.FromContextOrDiscard(ctx)

	merged := config.Values{}
	sources := map[config.Key]config.Source{}

	for _, layer := range p.layers {
		if layer.Path == "" {
			continue
		}

		values, err := ReadFile(ctx, layer.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if layer.Required {
					return nil, nil, &config.MissingConfigFileError{Path: layer.Path}
				}
				logger.V(1).Info("config file not present, skipping", "path", layer.Path, "source", layer.Source.String())
				continue
			}
			return nil, nil, err
		}

		logger.V(1).Info("loaded config file", "path", layer.Path, "source", layer.Source.String(), "keys", len(values))
		for k, v := range values {
			merged[k] = v
			sources[k] = layer.Source
		}
	}

	return merged, sources, nil
}

// ReadFile parses a single ini file and coerces its values by key type.
// A missing file yields an error wrapping fs.ErrNotExist.
func ReadFile(ctx context.Context, path string) (config.Values, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	sections := []*ini.Section{f.Section(ini.DefaultSection)}
	if sec, err := f.GetSection(SectionName); err == nil {
		sections = append(sections, sec)
	}

	values := config.Values{}
	for _, sec := range sections {
		for _, key := range sec.Keys() {
			k, known := config.ParseKey(key.Name())
			if !known {
				logger.V(1).Info("ignoring unknown config key", "path", path, "key", key.Name())
				continue
			}
			v, err := config.Coerce(k, key.String(), path)
			if err != nil {
				return nil, err
			}
			values[k] = v
		}
	}

	return values, nil
}
