/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package model

import (
	"sort"
	"time"
)

// DeploymentMode is the ARM deployment mode
type DeploymentMode string

const (
	// DeploymentModeIncremental leaves resources not in the template untouched
	DeploymentModeIncremental DeploymentMode = "Incremental"
	DeploymentModeComplete    DeploymentMode = "Complete"
)

// ParameterValue is the wrapper ARM requires around every template parameter value
type ParameterValue struct {
	Value any `json:"value"`
}

// WrapParameters wraps each value as {"value": v}
func WrapParameters(params map[string]any) map[string]ParameterValue {
	wrapped := make(map[string]ParameterValue, len(params))
	for k, v := range params {
		wrapped[k] = ParameterValue{Value: v}
	}
	return wrapped
}

// DeploymentRequest is everything needed to deploy a template into a resource group
type DeploymentRequest struct {
	GroupName      string
	Location       string
	Template       *Template
	Parameters     map[string]any
	DeploymentName string
	Mode           DeploymentMode
	DeleteFirst    bool
	ValidateOnly   bool
}

// EffectiveMode returns the request mode, incremental when unset
func (r DeploymentRequest) EffectiveMode() DeploymentMode {
	if r.Mode == "" {
		return DeploymentModeIncremental
	}
	return r.Mode
}

// Outputs are the values declared in the template's outputs section, as returned by ARM
type Outputs map[string]OutputValue

// OutputValue is a single deployment output
type OutputValue struct {
	Type  string
	Value any
}

// Keys returns the output names sorted alphabetically
func (o Outputs) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LogQuery is a Log Analytics search request
type LogQuery struct {
	SubscriptionID string
	GroupName      string
	WorkspaceName  string
	Query          string
	// Top caps the number of records; DefaultLogResultCount when zero
	Top int
	// Start and End bound the search window. A zero End is the time of the
	// call and a zero Start is 24 hours before End.
	Start time.Time
	End   time.Time
}

// DefaultLogResultCount caps a log search when no explicit count is given
const DefaultLogResultCount = 150

// DefaultLogWindow is the search window used when none is given
const DefaultLogWindow = 24 * time.Hour

// LogSearchResult is the final response of a Log Analytics search
type LogSearchResult struct {
	SearchID string
	Status   string
	Values   []map[string]any
}
