/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/model"
)

// TemplateLoader reads authored (YAML) ARM templates and normalises them
type TemplateLoader struct {
	processor TemplateProcessor
}

// NewTemplateLoader creates a loader that renders templates with the ARM template processor
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{processor: NewArmTemplateProcessor()}
}

// SetTemplateProcessor allows injecting a custom processor (for testing)
func (l *TemplateLoader) SetTemplateProcessor(p TemplateProcessor) {
	l.processor = p
}

// Load reads the template at path, renders it with variables and returns its canonical form
func (l *TemplateLoader) Load(ctx context.Context, path string, variables map[string]any) (*model.Template, error) {
	logger := logr.FromContextOrDiscard(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &config.MissingTemplateFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
	}

	rendered, err := l.processor.Process(string(content), variables)
	if err != nil {
		if missing := missingConfigKey(err); missing != nil {
			err = missing
		}
		return nil, fmt.Errorf("failed to render template %s: %w", path, err)
	}

	var document any
	if err := yaml.Unmarshal([]byte(rendered), &document); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	tmpl, err := model.NewTemplate(document)
	if err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", path, err)
	}

	logger.V(1).Info("loaded template", "path", path, "parameters", len(tmpl.Parameters()), "outputs", len(tmpl.Outputs()))
	return tmpl, nil
}

var missingKeyPattern = regexp.MustCompile(`map has no entry for key "([^"]+)"`)

// missingConfigKey reports a template reference to an unset config key as a MissingParameterError.
// References to names that are not config keys stay render errors.
func missingConfigKey(err error) *config.MissingParameterError {
	match := missingKeyPattern.FindStringSubmatch(err.Error())
	if match == nil {
		return nil
	}
	key, known := config.ParseKey(match[1])
	if !known || string(key) != match[1] {
		return nil
	}
	return &config.MissingParameterError{Keys: []config.Key{key}}
}

// ExportPath returns the sibling file the canonical JSON of the template at path is written to
func ExportPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.EqualFold(ext, ".json") {
		return base + ".canonical.json"
	}
	return base + ".json"
}

// ExportTemplate writes the canonical JSON of tmpl next to sourcePath and returns the written path
func ExportTemplate(ctx context.Context, tmpl *model.Template, sourcePath string) (string, error) {
	target := ExportPath(sourcePath)
	if err := os.WriteFile(target, tmpl.JSON(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write template JSON %s: %w", target, err)
	}
	logr.FromContextOrDiscard(ctx).Info("wrote template JSON", "path", target)
	return target, nil
}

// TemplateVariables exposes the non-secret configuration values to template rendering
func TemplateVariables(cfg config.Config) map[string]any {
	vars := map[string]any{}
	for k, v := range cfg.Values() {
		if config.IsSecret(k) {
			continue
		}
		vars[string(k)] = v
	}
	return vars
}
