/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter defines the interface for user prompting
type Prompter interface {
	ConfirmDeletion(groupName string) (bool, error)
}

// StdinPrompter implements Prompter using standard input
type StdinPrompter struct {
	input  io.Reader
	output io.Writer
}

// NewStdinPrompter creates a new prompter that reads from stdin
func NewStdinPrompter() *StdinPrompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// NewPrompter creates a prompter reading answers from input and writing questions to output
func NewPrompter(input io.Reader, output io.Writer) *StdinPrompter {
	return &StdinPrompter{input: input, output: output}
}

// ConfirmDeletion asks whether the resource group and everything in it should be deleted
func (p *StdinPrompter) ConfirmDeletion(groupName string) (bool, error) {
	_, _ = fmt.Fprintf(p.output, "Delete resource group %s and all of its resources? [y/N]: ", groupName)

	scanner := bufio.NewScanner(p.input)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read user input: %w", err)
		}
		// EOF or empty input - treat as "no"
		return false, nil
	}

	return isYes(scanner.Text()), nil
}

func isYes(answer string) bool {
	response := strings.ToLower(strings.TrimSpace(answer))
	return response == "y" || response == "yes"
}

// defaultPrompter is the package-level default prompter
var defaultPrompter Prompter = NewStdinPrompter()

// SetPrompter allows injection of a custom prompter (for testing)
func SetPrompter(p Prompter) {
	defaultPrompter = p
}

// GetDefaultPrompter returns the current default prompter (for testing)
func GetDefaultPrompter() Prompter {
	return defaultPrompter
}

// ConfirmDeletion prompts the user using the default prompter.
// Returns true if the user confirms (y/yes), false otherwise
func ConfirmDeletion(groupName string) (bool, error) {
	return defaultPrompter.ConfirmDeletion(groupName)
}
