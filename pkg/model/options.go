package model

import "strings"

// ParseOptions splits a comma separated option string, trimming each entry and
// dropping empty ones. The result is never nil.
func ParseOptions(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
