/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package resolve turns command-line values, config files and runtime
// defaults into a validated config.Config, and loads deployment templates.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/config/file"
	"github.com/orien/buildlab/internal/password"
)

const (
	// MasterConfigName is the default config file shipped next to the executable
	MasterConfigName = "buildlab.default.ini"
	// DefaultTemplateName is the bundled template, relative to the executable
	DefaultTemplateName = "templates/cloudbuilder.yaml"

	deploymentNamePrefix = "buildlab"
	deploymentNameLayout = "20060102-150405"
)

// Locations are the fixed config file paths, lowest precedence first
type Locations struct {
	Master string
	User   string
}

// DefaultLocations returns the master file next to the executable and the
// per-user file under the user config directory
func DefaultLocations() Locations {
	var loc Locations
	if dir, err := executableDir(); err == nil {
		loc.Master = filepath.Join(dir, MasterConfigName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		loc.User = filepath.Join(dir, "buildlab", "config.ini")
	}
	return loc
}

// DefaultTemplatePath returns the bundled template path
func DefaultTemplatePath() string {
	dir, err := executableDir()
	if err != nil {
		return DefaultTemplateName
	}
	return filepath.Join(dir, DefaultTemplateName)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// Resolver produces one validated Config per invocation
type Resolver struct {
	locations        Locations
	templatePath     string
	now              func() time.Time
	generatePassword func(length int, policy password.Policy) (string, error)
}

// NewResolver creates a resolver reading the given config file locations
func NewResolver(locations Locations) *Resolver {
	return &Resolver{
		locations:    locations,
		templatePath: DefaultTemplatePath(),
		now:          time.Now,
		generatePassword: password.Generate,
	}
}

// SetClock allows injecting a fixed clock (for testing)
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}

// SetPasswordGenerator allows injecting a deterministic generator (for testing)
func (r *Resolver) SetPasswordGenerator(gen func(length int, policy password.Policy) (string, error)) {
	r.generatePassword = gen
}

// SetDefaultTemplatePath overrides the bundled template path
func (r *Resolver) SetDefaultTemplatePath(path string) {
	r.templatePath = path
}

// Resolve merges the config files and the command-line values, applies
// runtime defaults and validates the result for action.
// Nothing is resolved partially: any error leaves no Config.
func (r *Resolver) Resolve(ctx context.Context, action config.Action, commandLine config.Values) (config.Config, error) {
	logger := logr.FromContextOrDiscard(ctx)

	fileValues, fileSources, err := r.provider(commandLine).Load(ctx)
	if err != nil {
		return config.Config{}, err
	}

	values, sources := Merge(fileValues, fileSources, commandLine)

	values, sources, err = r.ApplyRuntimeDefaults(values, sources)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Validate(action, values, sources)
	if err != nil {
		return config.Config{}, err
	}

	for _, k := range values.SortedKeys() {
		logger.V(1).Info("resolved config", "key", string(k), "source", sources[k].String())
	}
	return cfg, nil
}

func (r *Resolver) provider(commandLine config.Values) *file.Provider {
	explicit, _ := commandLine[config.KeyConfigFile].(string)
	return file.NewProvider(
		file.Layer{Path: r.locations.Master, Source: config.SourceMasterFile},
		file.Layer{Path: r.locations.User, Source: config.SourceUserFile},
		file.Layer{Path: explicit, Source: config.SourceExplicitFile, Required: true},
	)
}

// Merge overlays command-line values on the file values key by key.
// Only keys present in commandLine override; absent flags never clobber file values.
func Merge(fileValues config.Values, fileSources map[config.Key]config.Source, commandLine config.Values) (config.Values, map[config.Key]config.Source) {
	values := fileValues.Clone()
	sources := make(map[config.Key]config.Source, len(fileSources)+len(commandLine))
	for k, s := range fileSources {
		sources[k] = s
	}
	for k, v := range commandLine {
		values[k] = v
		sources[k] = config.SourceCommandLine
	}
	return values, sources
}

// ApplyRuntimeDefaults fills the keys that have computed defaults when they
// are still absent. Present values are never overwritten, so applying the
// defaults again changes nothing.
func (r *Resolver) ApplyRuntimeDefaults(values config.Values, sources map[config.Key]config.Source) (config.Values, map[config.Key]config.Source, error) {
	out := values.Clone()
	outSources := make(map[config.Key]config.Source, len(sources)+3)
	for k, s := range sources {
		outSources[k] = s
	}

	setDefault := func(key config.Key, value any) {
		out[key] = value
		outSources[key] = config.SourceRuntimeDefault
	}

	if !out.Has(config.KeyBuilderVMAdminPassword) {
		length, policy, err := passwordSettings(out)
		if err != nil {
			return nil, nil, err
		}
		pw, err := r.generatePassword(length, policy)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate admin password: %w", err)
		}
		setDefault(config.KeyBuilderVMAdminPassword, pw)
	}
	if !out.Has(config.KeyDeploymentName) {
		setDefault(config.KeyDeploymentName, fmt.Sprintf("%s-%s", deploymentNamePrefix, r.now().UTC().Format(deploymentNameLayout)))
	}
	if !out.Has(config.KeyARMTemplate) {
		setDefault(config.KeyARMTemplate, r.templatePath)
	}

	return out, outSources, nil
}

// passwordSettings reads the generated password's length and policy from the
// merged values, falling back to the password package defaults
func passwordSettings(values config.Values) (int, password.Policy, error) {
	length, policy := password.DefaultLength, password.DefaultPolicy

	if values.Has(config.KeyPasswordLength) {
		v, err := typed(config.KeyPasswordLength, values[config.KeyPasswordLength])
		if err != nil {
			return 0, policy, err
		}
		if n := v.(int); n > 0 {
			length = n
		}
	}
	if values.Has(config.KeyPasswordSymbols) {
		v, err := typed(config.KeyPasswordSymbols, values[config.KeyPasswordSymbols])
		if err != nil {
			return 0, policy, err
		}
		policy.Symbols = v.(bool)
	}
	return length, policy, nil
}

func typed(key config.Key, value any) (any, error) {
	if raw, ok := value.(string); ok {
		return config.Coerce(key, raw, config.SourceRuntimeDefault.String())
	}
	switch config.TypeOf(key) {
	case config.TypeInt:
		if _, ok := value.(int); !ok {
			return nil, &config.InvalidIntegerValueError{Key: key, Value: fmt.Sprint(value), Source: config.SourceRuntimeDefault.String()}
		}
	case config.TypeBool:
		if _, ok := value.(bool); !ok {
			return nil, &config.InvalidBooleanValueError{Key: key, Value: fmt.Sprint(value), Source: config.SourceRuntimeDefault.String()}
		}
	}
	return value, nil
}
