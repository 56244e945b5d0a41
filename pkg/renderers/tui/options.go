package tui

import "io"

// OutputFormat controls how collected values are serialized by Render.
type OutputFormat string

const (
	// OutputFormatJSON emits a JSON object keyed by field label.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one "Label: value" line per entry.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput directs the default survey driver's informational messages.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		r.out = out
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
