// Package render turns builder state into pages. It owns the view model every
// renderer draws from, the Renderer contract, and a registry to look renderers
// up by name.
package render

import (
	"context"
)

// Renderer converts a Page into a byte representation (HTML, text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
