package server

import (
	"net/http"
	"strings"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/theme"
)

// GuardFunc can reject a request before it reaches a route.
type GuardFunc func(r *http.Request) error

type Options struct {
	BasePath       string
	Title          string
	MaxImportBytes int64
	DefaultVariant string
	Guard          GuardFunc

	Logger    log.Logger
	Renderer  render.Renderer
	Exporters *exchange.Registry
	Themes    *theme.Selector
	// Registry receives the handler's metrics. A private registry is created
	// when nil so several handlers can coexist in one process.
	Registry *prometheus.Registry
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Title:          "Form Builder",
		MaxImportBytes: 1 << 20,
		DefaultVariant: theme.VariantLight,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.BasePath = strings.TrimRight(strings.TrimSpace(opts.BasePath), "/")
	if opts.BasePath != "" && !strings.HasPrefix(opts.BasePath, "/") {
		opts.BasePath = "/" + opts.BasePath
	}
	if opts.Title == "" {
		opts.Title = "Form Builder"
	}
	if opts.MaxImportBytes <= 0 {
		opts.MaxImportBytes = 1 << 20
	}
	opts.DefaultVariant = theme.NormalizeVariant(opts.DefaultVariant)
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Exporters == nil {
		opts.Exporters = exchange.DefaultRegistry()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Title = title
	}
}

func WithMaxImportBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxImportBytes = limit
	}
}

func WithDefaultVariant(variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultVariant = variant
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger log.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithRenderer(renderer render.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithExporters(registry *exchange.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Exporters = registry
	}
}

func WithThemes(selector *theme.Selector) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Themes = selector
	}
}

func WithRegistry(registry *prometheus.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Registry = registry
	}
}
