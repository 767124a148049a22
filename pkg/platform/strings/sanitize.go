// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
	"unicode"
)

// CollapseWhitespace trims the input and replaces every run of whitespace with
// a single separator. Used to derive stable artifact names from display names.
//
// Example:
//
//	CollapseWhitespace("  Jane   Q  Doe ", "_")
//	// Returns: "Jane_Q_Doe"
func CollapseWhitespace(value, sep string) string {
	fields := strings.FieldsFunc(value, unicode.IsSpace)
	return strings.Join(fields, sep)
}

// DedupeAndTrim removes duplicates and empty strings from a slice, trimming
// whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
