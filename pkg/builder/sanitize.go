package builder

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// sanitizeLabel strips markup from a label and returns the plain text.
func sanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := labelSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}
