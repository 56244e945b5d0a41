package render

import "strings"

// AlertKind drives alert styling.
type AlertKind string

const (
	AlertInfo    AlertKind = "info"
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Alert is a one-shot message shown to the user.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// MergeAlerts concatenates alert lists, trimming messages and dropping blank
// or repeated ones while preserving order.
func MergeAlerts(existing []Alert, extras ...Alert) []Alert {
	combined := make([]Alert, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)

	seen := make(map[Alert]struct{}, len(combined))
	out := make([]Alert, 0, len(combined))
	for _, alert := range combined {
		alert.Message = strings.TrimSpace(alert.Message)
		if alert.Message == "" {
			continue
		}
		if alert.Kind == "" {
			alert.Kind = AlertInfo
		}
		if _, dup := seen[alert]; dup {
			continue
		}
		seen[alert] = struct{}{}
		out = append(out, alert)
	}
	return out
}
