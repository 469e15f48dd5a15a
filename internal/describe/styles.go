/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package describe renders deployment outputs, log search results and the
// resolved configuration for the terminal.
package describe

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
)

// Styles holds the styles used when rendering
type Styles struct {
	Title  lipgloss.Style
	Key    lipgloss.Style
	Value  lipgloss.Style
	Subtle lipgloss.Style

	UseColour bool
}

// NewStyles returns coloured styles, or unstyled ones when useColour is false
func NewStyles(useColour bool) *Styles {
	s := &Styles{
		Title:     lipgloss.NewStyle(),
		Key:       lipgloss.NewStyle(),
		Value:     lipgloss.NewStyle(),
		Subtle:    lipgloss.NewStyle(),
		UseColour: useColour,
	}
	if !useColour {
		return s
	}

	keyText, subtleText, titleText := "4", "8", "5"
	if lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
		keyText, subtleText, titleText = "14", "8", "13"
	}

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(titleText))
	s.Key = lipgloss.NewStyle().Foreground(lipgloss.Color(keyText))
	s.Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color(subtleText))
	return s
}

// ShouldUseColour reports whether w is a colour-capable terminal.
// NO_COLOR and TERM=dumb turn colour off.
func ShouldUseColour(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
