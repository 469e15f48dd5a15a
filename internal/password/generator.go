/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package password generates random credentials that satisfy a complexity policy
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// DefaultLength is used when no length is configured
const DefaultLength = 24

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	// ShellSafeSymbols are symbols that need no quoting in common shells
	// and are accepted by Azure VM admin password rules
	ShellSafeSymbols = "!#%+,-./:=?@^_~"
)

var (
	ErrAlphabetIncomplete = errors.New("alphabet does not cover every required character class")
	ErrLengthTooShort     = errors.New("password length is shorter than the number of required character classes")
)

// Policy describes the character classes a password must contain
type Policy struct {
	// Symbols requires at least one character from ShellSafeSymbols
	Symbols bool
}

// DefaultPolicy requires lowercase, uppercase, a digit and a symbol
var DefaultPolicy = Policy{Symbols: true}

func (p Policy) classes() []string {
	classes := []string{lowercase, uppercase, digits}
	if p.Symbols {
		classes = append(classes, ShellSafeSymbols)
	}
	return classes
}

// Alphabet returns every character a password under this policy may contain
func (p Policy) Alphabet() string {
	return strings.Join(p.classes(), "")
}

// Satisfies reports whether candidate contains a character of every class the policy requires
func (p Policy) Satisfies(candidate string) bool {
	for _, class := range p.classes() {
		if !strings.ContainsAny(candidate, class) {
			return false
		}
	}
	return true
}

// Generator draws passwords from an alphabet using a random source
type Generator struct {
	policy   Policy
	alphabet []rune
	random   io.Reader
}

// NewGenerator creates a Generator reading from crypto/rand
func NewGenerator(policy Policy) (*Generator, error) {
	return newGenerator(policy, policy.Alphabet(), rand.Reader)
}

func newGenerator(policy Policy, alphabet string, random io.Reader) (*Generator, error) {
	for _, class := range policy.classes() {
		if !strings.ContainsAny(alphabet, class) {
			return nil, ErrAlphabetIncomplete
		}
	}
	return &Generator{policy: policy, alphabet: []rune(alphabet), random: random}, nil
}

// Generate draws length characters uniformly from the alphabet and redraws
// the whole string until it satisfies the policy
func (g *Generator) Generate(length int) (string, error) {
	if length < len(g.policy.classes()) {
		return "", fmt.Errorf("%w: %d < %d", ErrLengthTooShort, length, len(g.policy.classes()))
	}

	size := big.NewInt(int64(len(g.alphabet)))
	buf := make([]rune, length)
	for {
		for i := range buf {
			n, err := rand.Int(g.random, size)
			if err != nil {
				return "", fmt.Errorf("failed to read random source: %w", err)
			}
			buf[i] = g.alphabet[n.Int64()]
		}
		candidate := string(buf)
		if g.policy.Satisfies(candidate) {
			return candidate, nil
		}
	}
}

// Generate creates a password of the given length with a crypto/rand backed Generator
func Generate(length int, policy Policy) (string, error) {
	g, err := NewGenerator(policy)
	if err != nil {
		return "", err
	}
	return g.Generate(length)
}
