package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is a singleton instance for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// AutoTableName derives a table name from a Go type name: snake_case, pluralized.
// BlogPost becomes blog_posts.
func AutoTableName(structName string) string {
	return pluralize(toSnakeCase(structName))
}

// toSnakeCase converts any naming convention to snake_case.
// Handles complex cases including acronyms, numbers, and edge cases.
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	switch name {
	case "ID", "UUID", "URL", "API", "JSON", "SQL":
		return strings.ToLower(name)
	}

	// If already snake_case (contains underscores and no uppercase), return as-is
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return strings.ToLower(name)
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)

	for i, r := range runes {
		lower := unicode.ToLower(r)
		needsUnderscore := false

		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]

			// Add underscore before uppercase letters in these cases:
			// 1. Previous char is lowercase or digit: aB -> a_b, a1B -> a1_b
			// 2. Previous char is uppercase, but next char is lowercase: ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				needsUnderscore = true
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				needsUnderscore = true
			}
		}

		if needsUnderscore {
			result.WriteByte('_')
		}

		result.WriteRune(lower)
	}

	return result.String()
}

// pluralize converts singular nouns to their plural forms.
func pluralize(name string) string {
	if name == "" {
		return ""
	}

	return pluralizeClient.Pluralize(name, 2, false)
}

// hasUpperCase returns true if the string contains any uppercase letters.
func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
