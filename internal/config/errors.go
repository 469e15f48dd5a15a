/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package config

import (
	"fmt"
	"strings"
)

// MissingParameterError is returned when required keys are still absent
// after every source and runtime default has been applied, or when a
// template references a config key that has no value. Action is empty
// until the caller knows which action was rendering the template.
type MissingParameterError struct {
	Action Action
	Keys   []Key
}

func (e *MissingParameterError) Error() string {
	names := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		names[i] = fmt.Sprintf("%s (--%s)", k, k.FlagName())
	}
	if e.Action == "" {
		return fmt.Sprintf("template is missing required parameter(s): %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("action %s is missing required parameter(s): %s", e.Action, strings.Join(names, ", "))
}

// UnknownActionError is returned for an unrecognised action token
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action '%s'", e.Action)
}

// MissingConfigFileError is returned when an explicitly named config file does not exist
type MissingConfigFileError struct {
	Path string
}

func (e *MissingConfigFileError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// MissingTemplateFileError is returned when the template path does not exist
type MissingTemplateFileError struct {
	Path string
}

func (e *MissingTemplateFileError) Error() string {
	return fmt.Sprintf("template file not found: %s", e.Path)
}

// InvalidBooleanValueError is returned when a boolean key holds an unparseable value
type InvalidBooleanValueError struct {
	Key    Key
	Value  string
	Source string
}

func (e *InvalidBooleanValueError) Error() string {
	return fmt.Sprintf("invalid boolean value '%s' for %s in %s", e.Value, e.Key, e.Source)
}

// InvalidIntegerValueError is returned when an integer key holds an unparseable value
type InvalidIntegerValueError struct {
	Key    Key
	Value  string
	Source string
}

func (e *InvalidIntegerValueError) Error() string {
	return fmt.Sprintf("invalid integer value '%s' for %s in %s", e.Value, e.Key, e.Source)
}
