/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package config

import (
	"strconv"
	"strings"
)

var (
	truthy = map[string]bool{"1": true, "t": true, "true": true, "y": true, "yes": true, "on": true}
	falsy  = map[string]bool{"0": true, "f": true, "false": true, "n": true, "no": true, "off": true}
)

// ParseBool parses a boolean using the one canonical truthy/falsy set
// shared by every source
func ParseBool(raw string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[v]:
		return true, true
	case falsy[v]:
		return false, true
	default:
		return false, false
	}
}

// Coerce converts a raw string for key according to the key type table.
// source names the origin of the value for error messages.
func Coerce(key Key, raw string, source string) (any, error) {
	switch TypeOf(key) {
	case TypeBool:
		b, ok := ParseBool(raw)
		if !ok {
			return nil, &InvalidBooleanValueError{Key: key, Value: raw, Source: source}
		}
		return b, nil
	case TypeInt:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &InvalidIntegerValueError{Key: key, Value: raw, Source: source}
		}
		return i, nil
	default:
		return raw, nil
	}
}
