/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package config defines the configuration keys, actions and the resolved
// configuration record shared by the resolver, the command layer and the
// deployment orchestrator.
package config

import (
	"sort"
	"strings"
)

// Key is the canonical (underscore separated) name of a configuration option
type Key string

const (
	KeyConfigFile             Key = "config_file"
	KeyDebug                  Key = "debug"
	KeyGroupName              Key = "group_name"
	KeyGroupLocation          Key = "group_location"
	KeyDeploymentName         Key = "deployment_name"
	KeyARMTemplate            Key = "arm_template"
	KeyStorageAccountName     Key = "storage_account_name"
	KeyBuilderVMAdminPassword Key = "builder_vm_admin_password"
	KeyBuilderVMSize          Key = "builder_vm_size"
	KeyServicePrincipalID     Key = "service_principal_id"
	KeyServicePrincipalKey    Key = "service_principal_key"
	KeyTenant                 Key = "tenant"
	KeySubscriptionID         Key = "subscription_id"
	KeyDeleteFirst            Key = "delete_first"
	KeyWorkspaceName          Key = "workspace_name"
	KeyLogQuery               Key = "log_query"
	KeyLogResultCount         Key = "log_result_count"
	KeyPasswordLength         Key = "password_length"
	KeyPasswordSymbols        Key = "password_symbols"
	KeyAssumeYes              Key = "assume_yes"
)

// ValueType is the coercion type of a key
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
	TypeInt
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	default:
		return "string"
	}
}

// keyTypes lists the keys that are not strings
var keyTypes = map[Key]ValueType{
	KeyDebug:           TypeBool,
	KeyDeleteFirst:     TypeBool,
	KeyPasswordSymbols: TypeBool,
	KeyAssumeYes:       TypeBool,
	KeyLogResultCount:  TypeInt,
	KeyPasswordLength:  TypeInt,
}

// allKeys is every key the record knows about, in declaration order
var allKeys = []Key{
	KeyConfigFile,
	KeyDebug,
	KeyGroupName,
	KeyGroupLocation,
	KeyDeploymentName,
	KeyARMTemplate,
	KeyStorageAccountName,
	KeyBuilderVMAdminPassword,
	KeyBuilderVMSize,
	KeyServicePrincipalID,
	KeyServicePrincipalKey,
	KeyTenant,
	KeySubscriptionID,
	KeyDeleteFirst,
	KeyWorkspaceName,
	KeyLogQuery,
	KeyLogResultCount,
	KeyPasswordLength,
	KeyPasswordSymbols,
	KeyAssumeYes,
}

// secretKeys are never printed in clear text
var secretKeys = map[Key]bool{
	KeyServicePrincipalKey:    true,
	KeyBuilderVMAdminPassword: true,
}

// Keys returns all known configuration keys
func Keys() []Key {
	keys := make([]Key, len(allKeys))
	copy(keys, allKeys)
	return keys
}

// TypeOf returns the coercion type of a key, TypeString unless declared otherwise
func TypeOf(key Key) ValueType {
	if t, ok := keyTypes[key]; ok {
		return t
	}
	return TypeString
}

// IsSecret reports whether the value of key must be masked when displayed
func IsSecret(key Key) bool {
	return secretKeys[key]
}

// ParseKey canonicalises a key as written in a file or on the command line.
// Dashes become underscores so --group-name and group_name name the same key.
func ParseKey(name string) (Key, bool) {
	canonical := Key(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, k := range allKeys {
		if k == canonical {
			return k, true
		}
	}
	return canonical, false
}

// FlagName returns the command-line spelling of a key
func (k Key) FlagName() string {
	return strings.ReplaceAll(string(k), "_", "-")
}

// Source identifies where a configuration value came from
type Source int

const (
	SourceNone Source = iota
	SourceRuntimeDefault
	SourceMasterFile
	SourceUserFile
	SourceExplicitFile
	SourceCommandLine
)

func (s Source) String() string {
	switch s {
	case SourceRuntimeDefault:
		return "runtime default"
	case SourceMasterFile:
		return "master config file"
	case SourceUserFile:
		return "user config file"
	case SourceExplicitFile:
		return "explicit config file"
	case SourceCommandLine:
		return "command line"
	default:
		return "unset"
	}
}

// Values is a raw mapping from key to a string, bool or int value.
// A key missing from the map is absent; a present key always holds a value.
type Values map[Key]any

// Clone returns a shallow copy of v
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Has reports whether key is present and non-empty
func (v Values) Has(key Key) bool {
	val, ok := v[key]
	if !ok || val == nil {
		return false
	}
	if s, isString := val.(string); isString {
		return s != ""
	}
	return true
}

// SortedKeys returns the present keys sorted by name
func (v Values) SortedKeys() []Key {
	keys := make([]Key, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
