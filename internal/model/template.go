/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// TemplateParameter is a parameter declaration in an ARM template
type TemplateParameter struct {
	Type          string         `json:"type"`
	DefaultValue  any            `json:"defaultValue,omitempty"`
	AllowedValues []any          `json:"allowedValues,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TemplateOutput is an output declaration in an ARM template
type TemplateOutput struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

type templateSections struct {
	Schema         string                       `json:"$schema"`
	ContentVersion string                       `json:"contentVersion"`
	Parameters     map[string]TemplateParameter `json:"parameters"`
	Resources      []any                        `json:"resources"`
	Outputs        map[string]TemplateOutput    `json:"outputs"`
}

// Template is an ARM template in its canonical JSON serialisation.
// The bytes returned by JSON are exactly what is submitted to Azure.
type Template struct {
	body     []byte
	sections templateSections
}

// NewTemplate normalises a decoded template document into canonical JSON
// (compact, object keys sorted)
func NewTemplate(document any) (*Template, error) {
	normalised, err := normalise(document)
	if err != nil {
		return nil, err
	}
	if _, ok := normalised.(map[string]any); !ok {
		return nil, fmt.Errorf("template document must be a mapping, got %T", document)
	}

	body, err := json.Marshal(normalised)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise template: %w", err)
	}
	return ParseTemplateJSON(body)
}

// ParseTemplateJSON reads a template from its JSON form, re-serialising it canonically
func ParseTemplateJSON(data []byte) (*Template, error) {
	var document any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	if _, ok := document.(map[string]any); !ok {
		return nil, fmt.Errorf("template document must be a JSON object")
	}

	body, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise template: %w", err)
	}

	t := &Template{body: body}
	if err := json.Unmarshal(body, &t.sections); err != nil {
		return nil, fmt.Errorf("template sections are malformed: %w", err)
	}
	return t, nil
}

// JSON returns a copy of the canonical serialisation
func (t *Template) JSON() []byte {
	out := make([]byte, len(t.body))
	copy(out, t.body)
	return out
}

// Document returns the canonical serialisation as a raw JSON value, suitable
// for embedding in a deployment request without re-encoding
func (t *Template) Document() json.RawMessage {
	return json.RawMessage(t.JSON())
}

// ToYAML converts the canonical form back into YAML
func (t *Template) ToYAML() ([]byte, error) {
	return yaml.JSONToYAML(t.body)
}

// Schema returns the $schema of the template
func (t *Template) Schema() string {
	return t.sections.Schema
}

// ContentVersion returns the contentVersion of the template
func (t *Template) ContentVersion() string {
	return t.sections.ContentVersion
}

// Parameters returns the parameter declarations
func (t *Template) Parameters() map[string]TemplateParameter {
	return t.sections.Parameters
}

// Resources returns the resource declarations
func (t *Template) Resources() []any {
	return t.sections.Resources
}

// Outputs returns the output declarations
func (t *Template) Outputs() map[string]TemplateOutput {
	return t.sections.Outputs
}

// normalise converts YAML-decoded values into JSON-compatible ones
func normalise(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			key, ok := k.(string)
			if !ok {
				key = fmt.Sprint(k)
			}
			n, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
