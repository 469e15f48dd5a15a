/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package config

import (
	"fmt"
)

// Config is the validated configuration for one invocation.
// It is only produced by Validate and is passed around by value.
type Config struct {
	Action Action

	ConfigFile             string
	Debug                  bool
	GroupName              string
	GroupLocation          string
	DeploymentName         string
	ARMTemplate            string
	StorageAccountName     string
	BuilderVMAdminPassword string
	BuilderVMSize          string
	ServicePrincipalID     string
	ServicePrincipalKey    string
	Tenant                 string
	SubscriptionID         string
	DeleteFirst            bool
	WorkspaceName          string
	LogQuery               string
	LogResultCount         int
	PasswordLength         int
	PasswordSymbols        bool
	AssumeYes              bool

	sources map[Key]Source
}

// Credentials identifies the service principal and subscription used for Azure calls
type Credentials struct {
	ClientID       string
	ClientSecret   string
	Tenant         string
	SubscriptionID string
}

// DeploySettings carries the keys required by the deploy and validate actions
type DeploySettings struct {
	Credentials
	GroupName          string
	GroupLocation      string
	DeploymentName     string
	TemplatePath       string
	DeleteFirst        bool
	TemplateParameters map[string]any
}

// GroupSettings carries the keys required by the delete and testgroup actions
type GroupSettings struct {
	Credentials
	GroupName string
}

// LogSettings carries the keys required by the log action
type LogSettings struct {
	Credentials
	GroupName     string
	WorkspaceName string
	Query         string
	ResultCount   int
}

// PasswordSettings carries the keys required by the genpass action
type PasswordSettings struct {
	Length  int
	Symbols bool
}

// Validate checks that every key required by action is present in values
// and returns the populated Config. All absent keys are reported at once.
func Validate(action Action, values Values, sources map[Key]Source) (Config, error) {
	if _, ok := requirements[action]; !ok {
		return Config{}, &UnknownActionError{Action: string(action)}
	}

	var missing []Key
	for _, k := range requirements[action] {
		if !values.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Config{}, &MissingParameterError{Action: action, Keys: missing}
	}

	cfg := Config{Action: action, sources: make(map[Key]Source, len(values))}
	for k, v := range values {
		if err := cfg.set(k, v); err != nil {
			return Config{}, err
		}
		cfg.sources[k] = sources[k]
	}
	return cfg, nil
}

func (c *Config) set(key Key, value any) error {
	switch TypeOf(key) {
	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("config key %s holds %T, expected bool", key, value)
		}
		switch key {
		case KeyDebug:
			c.Debug = b
		case KeyDeleteFirst:
			c.DeleteFirst = b
		case KeyPasswordSymbols:
			c.PasswordSymbols = b
		case KeyAssumeYes:
			c.AssumeYes = b
		}
	case TypeInt:
		i, ok := value.(int)
		if !ok {
			return fmt.Errorf("config key %s holds %T, expected int", key, value)
		}
		switch key {
		case KeyLogResultCount:
			c.LogResultCount = i
		case KeyPasswordLength:
			c.PasswordLength = i
		}
	default:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("config key %s holds %T, expected string", key, value)
		}
		switch key {
		case KeyConfigFile:
			c.ConfigFile = s
		case KeyGroupName:
			c.GroupName = s
		case KeyGroupLocation:
			c.GroupLocation = s
		case KeyDeploymentName:
			c.DeploymentName = s
		case KeyARMTemplate:
			c.ARMTemplate = s
		case KeyStorageAccountName:
			c.StorageAccountName = s
		case KeyBuilderVMAdminPassword:
			c.BuilderVMAdminPassword = s
		case KeyBuilderVMSize:
			c.BuilderVMSize = s
		case KeyServicePrincipalID:
			c.ServicePrincipalID = s
		case KeyServicePrincipalKey:
			c.ServicePrincipalKey = s
		case KeyTenant:
			c.Tenant = s
		case KeySubscriptionID:
			c.SubscriptionID = s
		case KeyWorkspaceName:
			c.WorkspaceName = s
		case KeyLogQuery:
			c.LogQuery = s
		}
	}
	return nil
}

// Source returns where the value of key came from
func (c Config) Source(key Key) Source {
	return c.sources[key]
}

// Credentials returns the Azure identity settings
func (c Config) Credentials() Credentials {
	return Credentials{
		ClientID:       c.ServicePrincipalID,
		ClientSecret:   c.ServicePrincipalKey,
		Tenant:         c.Tenant,
		SubscriptionID: c.SubscriptionID,
	}
}

// Deploy returns the settings for the deploy and validate actions
func (c Config) Deploy() DeploySettings {
	return DeploySettings{
		Credentials:    c.Credentials(),
		GroupName:      c.GroupName,
		GroupLocation:  c.GroupLocation,
		DeploymentName: c.DeploymentName,
		TemplatePath:   c.ARMTemplate,
		DeleteFirst:    c.DeleteFirst,
		TemplateParameters: map[string]any{
			"storageAccountName":     c.StorageAccountName,
			"builderVmAdminPassword": c.BuilderVMAdminPassword,
			"builderVmSize":          c.BuilderVMSize,
		},
	}
}

// Group returns the settings for the delete and testgroup actions
func (c Config) Group() GroupSettings {
	return GroupSettings{Credentials: c.Credentials(), GroupName: c.GroupName}
}

// Log returns the settings for the log action
func (c Config) Log() LogSettings {
	return LogSettings{
		Credentials:   c.Credentials(),
		GroupName:     c.GroupName,
		WorkspaceName: c.WorkspaceName,
		Query:         c.LogQuery,
		ResultCount:   c.LogResultCount,
	}
}

// Password returns the settings for the genpass action
func (c Config) Password() PasswordSettings {
	return PasswordSettings{Length: c.PasswordLength, Symbols: c.PasswordSymbols}
}

// Values returns the configuration as a key/value map, for template rendering
// and debug output. Zero values of keys that were never set are omitted.
func (c Config) Values() Values {
	all := Values{
		KeyConfigFile:             c.ConfigFile,
		KeyDebug:                  c.Debug,
		KeyGroupName:              c.GroupName,
		KeyGroupLocation:          c.GroupLocation,
		KeyDeploymentName:         c.DeploymentName,
		KeyARMTemplate:            c.ARMTemplate,
		KeyStorageAccountName:     c.StorageAccountName,
		KeyBuilderVMAdminPassword: c.BuilderVMAdminPassword,
		KeyBuilderVMSize:          c.BuilderVMSize,
		KeyServicePrincipalID:     c.ServicePrincipalID,
		KeyServicePrincipalKey:    c.ServicePrincipalKey,
		KeyTenant:                 c.Tenant,
		KeySubscriptionID:         c.SubscriptionID,
		KeyDeleteFirst:            c.DeleteFirst,
		KeyWorkspaceName:          c.WorkspaceName,
		KeyLogQuery:               c.LogQuery,
		KeyLogResultCount:         c.LogResultCount,
		KeyPasswordLength:         c.PasswordLength,
		KeyPasswordSymbols:        c.PasswordSymbols,
		KeyAssumeYes:              c.AssumeYes,
	}
	out := make(Values, len(c.sources))
	for k := range c.sources {
		out[k] = all[k]
	}
	return out
}
