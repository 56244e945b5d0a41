// Package vanilla renders the builder as a single server-side HTML page. The
// page works without JavaScript; the bundled script only adds drag and drop
// reordering on top of the move buttons.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide page.tmpl and the partials it includes.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate("page", map[string]any{
		"page": page,
		"view": viewOptions(options),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// viewOptions flattens render options into template friendly values; the
// theme's asset resolver is a function and is resolved here.
func viewOptions(options render.RenderOptions) map[string]any {
	base := strings.TrimRight(options.BasePath, "/")
	view := map[string]any{
		"base":       base,
		"preview":    options.Preview,
		"alerts":     render.MergeAlerts(nil, options.Alerts...),
		"variant":    theme.VariantLight,
		"dark":       false,
		"style":      "",
		"stylesheet": base + "/assets/" + StylesheetName,
		"script":     base + "/assets/" + ScriptName,
	}
	if cfg := options.Theme; cfg != nil {
		view["variant"] = cfg.Variant
		view["dark"] = cfg.Variant == theme.VariantDark
		view["style"] = theme.CSSVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			if url := cfg.AssetURL(theme.StylesheetAsset); url != "" {
				view["stylesheet"] = url
			}
		}
	}
	return view
}
