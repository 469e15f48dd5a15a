/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/orien/buildlab/internal/config"
)

type flagSpec struct {
	key       config.Key
	name      string
	shorthand string
	usage     string
}

// configFlags lists one flag per configuration key
var configFlags = []flagSpec{
	{key: config.KeyConfigFile, shorthand: "c", usage: "additional config file, overriding the user and master files"},
	{key: config.KeyDebug, shorthand: "v", usage: "show debug messages, config sources and export the template JSON"},
	{key: config.KeyGroupName, usage: "Azure resource group name"},
	{key: config.KeyGroupLocation, usage: "Azure region of the resource group (only some regions offer Dv3/Ev3 VMs)"},
	{key: config.KeyDeploymentName, usage: "deployment name (default buildlab-<UTC timestamp>)"},
	{key: config.KeyARMTemplate, usage: "location of the ARM template (YAML)"},
	{key: config.KeyStorageAccountName, usage: "name for the storage account; must be a valid DNS label"},
	{key: config.KeyBuilderVMAdminPassword, usage: "admin password for the builder VM (generated when unset)"},
	{key: config.KeyBuilderVMSize, usage: "builder VM size; only Dv3 and Ev3 sizes support nested virtualisation"},
	{key: config.KeyServicePrincipalID, usage: "service principal application (client) id"},
	{key: config.KeyServicePrincipalKey, usage: "service principal secret"},
	{key: config.KeyTenant, usage: "Azure tenant, such as example.onmicrosoft.com or its GUID"},
	{key: config.KeySubscriptionID, usage: "Azure subscription id"},
	{key: config.KeyDeleteFirst, usage: "delete the resource group before deploying"},
	{key: config.KeyWorkspaceName, usage: "Log Analytics workspace name"},
	{key: config.KeyLogQuery, usage: "Log Analytics search query"},
	{key: config.KeyLogResultCount, usage: "maximum number of log records to return"},
	{key: config.KeyPasswordLength, usage: "length of generated passwords"},
	{key: config.KeyPasswordSymbols, usage: "require a symbol in generated passwords"},
	{key: config.KeyAssumeYes, name: "yes", shorthand: "y", usage: "do not ask for confirmation before deleting"},
}

func (f flagSpec) flagName() string {
	if f.name != "" {
		return f.name
	}
	return f.key.FlagName()
}

// registerConfigFlags adds a flag for every configuration key. Flag defaults
// are never used as values; only flags set on the command line are collected.
func registerConfigFlags(flags *pflag.FlagSet) {
	for _, f := range configFlags {
		switch config.TypeOf(f.key) {
		case config.TypeBool:
			flags.BoolP(f.flagName(), f.shorthand, false, f.usage)
		case config.TypeInt:
			flags.IntP(f.flagName(), f.shorthand, 0, f.usage)
		default:
			flags.StringP(f.flagName(), f.shorthand, "", f.usage)
		}
	}
}

// commandLineValues returns the values of the flags set on the command line.
// An unset flag is absent, so it can never override a config file value.
func commandLineValues(flags *pflag.FlagSet) (config.Values, error) {
	values := config.Values{}
	for _, f := range configFlags {
		name := f.flagName()
		if !flags.Changed(name) {
			continue
		}

		var (
			value any
			err   error
		)
		switch config.TypeOf(f.key) {
		case config.TypeBool:
			value, err = flags.GetBool(name)
		case config.TypeInt:
			value, err = flags.GetInt(name)
		default:
			value, err = flags.GetString(name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read flag --%s: %w", name, err)
		}
		values[f.key] = value
	}
	return values, nil
}
