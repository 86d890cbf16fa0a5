// Package template renders email templates by substituting {{name}}
// placeholders. There are no conditionals, loops, or escaping: callers are
// trusted and placeholders whose name is not supplied stay in the output as
// literal text.
package template

import (
	"fmt"
	"strings"
)

// Render replaces every occurrence of {{name}} in pattern for each key present
// in vars. Values are coerced to strings. Names are matched literally, with no
// whitespace tolerance inside the braces. Rendering is pure and idempotent when
// re-applied to output containing no further placeholders.
func Render(pattern string, vars map[string]interface{}) string {
	out := pattern
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", fmt.Sprint(value))
	}
	return out
}

// RenderSubjectBody renders both parts of a template with the same variables.
func RenderSubjectBody(subject, body string, vars map[string]interface{}) (string, string) {
	return Render(subject, vars), Render(body, vars)
}

// NormalizeVariables returns a copy of vars with the trackingUrl/trackingURL
// aliases kept mutually in sync. Older templates reference one spelling, newer
// ones the other, so whichever is supplied backfills the missing alias.
func NormalizeVariables(vars map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(vars)+1)
	for name, value := range vars {
		normalized[name] = value
	}

	if value, ok := normalized["trackingUrl"]; ok {
		if _, exists := normalized["trackingURL"]; !exists {
			normalized["trackingURL"] = value
		}
	}
	if value, ok := normalized["trackingURL"]; ok {
		if _, exists := normalized["trackingUrl"]; !exists {
			normalized["trackingUrl"] = value
		}
	}

	return normalized
}
