package stringutil

import "strings"

// EnvOr returns value (trimmed) if non-empty, otherwise existing. The
// config loader uses it to overlay environment variables onto file values.
func EnvOr(existing, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}

// FirstNonEmpty returns the first string whose trimmed form is non-empty,
// or "" when every candidate is blank.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
