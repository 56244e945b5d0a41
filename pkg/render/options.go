package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions carry per-request presentation state that is not part of the
// builder: flash alerts, the preview overlay and the resolved theme.
type RenderOptions struct {
	// Alerts are shown above the editor, in order.
	Alerts []Alert
	// Preview opens the read-only preview overlay.
	Preview bool
	// Theme supplies CSS variables and asset URLs. Nil renders unthemed.
	Theme *theme.RendererConfig
	// BasePath prefixes every route the page links or posts to.
	BasePath string
}
