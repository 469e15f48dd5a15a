/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package describe

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/orien/buildlab/internal/config"
	"github.com/orien/buildlab/internal/model"
)

const maskedSecret = "********"

// FormatOutputs renders deployment outputs as "- name = value" lines, sorted by name
func FormatOutputs(outputs model.Outputs, styles *Styles) string {
	if len(outputs) == 0 {
		return styles.Subtle.Render("No outputs") + "\n"
	}

	var output strings.Builder
	output.WriteString(styles.Title.Render("Outputs:") + "\n")
	for _, name := range outputs.Keys() {
		fmt.Fprintf(&output, "- %s = %s\n", styles.Key.Render(name), styles.Value.Render(formatValue(outputs[name].Value)))
	}
	return output.String()
}

// FormatLogResult renders one line per record, fields sorted by name
func FormatLogResult(result *model.LogSearchResult, styles *Styles) string {
	var output strings.Builder
	fmt.Fprintf(&output, "%s %s\n",
		styles.Title.Render(fmt.Sprintf("%d records", len(result.Values))),
		styles.Subtle.Render("("+result.Status+")"))

	for _, record := range result.Values {
		fields := make([]string, 0, len(record))
		for _, name := range sortedKeys(record) {
			fields = append(fields, fmt.Sprintf("%s=%s", styles.Key.Render(name), formatValue(record[name])))
		}
		fmt.Fprintf(&output, "- %s\n", strings.Join(fields, " "))
	}
	return output.String()
}

// FormatConfigSources lists each resolved key with its value and the source
// that supplied it. Secrets are masked.
func FormatConfigSources(cfg config.Config, styles *Styles) string {
	values := cfg.Values()

	var output strings.Builder
	output.WriteString(styles.Title.Render("Configuration:") + "\n")
	for _, key := range values.SortedKeys() {
		value := formatValue(values[key])
		if config.IsSecret(key) {
			value = maskedSecret
		}
		fmt.Fprintf(&output, "- %s = %s %s\n",
			styles.Key.Render(string(key)),
			value,
			styles.Subtle.Render("("+cfg.Source(key).String()+")"))
	}
	return output.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
