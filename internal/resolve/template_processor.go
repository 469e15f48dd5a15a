/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package resolve

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateProcessor renders an authored template document before it is parsed
type TemplateProcessor interface {
	Process(templateContent string, variables map[string]any) (string, error)
}

// ArmTemplateProcessor renders ARM template documents using Go's text/template with Sprig functions.
// ARM expressions use square brackets, so they pass through untouched.
type ArmTemplateProcessor struct{}

// NewArmTemplateProcessor creates a new ARM template processor
func NewArmTemplateProcessor() *ArmTemplateProcessor {
	return &ArmTemplateProcessor{}
}

// Process renders templateContent with the provided variables.
// Referencing a variable that does not exist is an error.
func (tp *ArmTemplateProcessor) Process(templateContent string, variables map[string]any) (string, error) {
	tmpl, err := template.New("arm").
		Funcs(sprig.TxtFuncMap()).
		Funcs(armFuncs).
		Option("missingkey=error").
		Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, variables)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// armFuncs build ARM template expressions, e.g. {{ armParameter "vmSize" }}
// renders [parameters('vmSize')]
var armFuncs = template.FuncMap{
	"armParameter": func(name string) string {
		return fmt.Sprintf("[parameters('%s')]", name)
	},
	"armVariable": func(name string) string {
		return fmt.Sprintf("[variables('%s')]", name)
	},
}
