// Package formbuilder wires the builder, a persistence store and the
// renderers into one value for embedding applications.
package formbuilder

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/server"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

const defaultRendererName = vanilla.Name

// Option customises an App.
type Option func(*App)

// WithStorage selects the persistence backend opened by New.
func WithStorage(cfg storage.Config) Option {
	return func(a *App) {
		a.storageCfg = cfg
	}
}

// WithStore injects an already opened store. The App does not close it.
func WithStore(store storage.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(a *App) {
		a.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when Render gets no name.
func WithDefaultRenderer(name string) Option {
	return func(a *App) {
		a.defaultRenderer = name
	}
}

// WithBuilderOptions forwards options to builder.New.
func WithBuilderOptions(opts ...builder.Option) Option {
	return func(a *App) {
		a.builderOpts = append(a.builderOpts, opts...)
	}
}

func WithLogger(logger log.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

type App struct {
	storageCfg      storage.Config
	store           storage.Store
	ownsStore       bool
	registry        *render.Registry
	defaultRenderer string
	builderOpts     []builder.Option
	logger          log.Logger
	builder         *builder.Builder
}

// New opens the store, loads the persisted field list and registers the
// vanilla renderer unless a registry is supplied.
func New(ctx context.Context, options ...Option) (*App, error) {
	a := &App{defaultRenderer: defaultRendererName, logger: log.NewNopLogger()}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	if a.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		a.registry = registry
	}

	if a.store == nil {
		store, err := storage.Open(ctx, a.storageCfg)
		if err != nil {
			return nil, fmt.Errorf("formbuilder: open store: %w", err)
		}
		a.store = store
		a.ownsStore = true
	}

	opts := []builder.Option{builder.WithStore(a.store), builder.WithLogger(a.logger)}
	if a.storageCfg.Key != "" {
		opts = append(opts, builder.WithKey(a.storageCfg.Key))
	}
	b, err := builder.New(ctx, append(opts, a.builderOpts...)...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("formbuilder: %w", err)
	}
	a.builder = b
	return a, nil
}

// DefaultRegistry returns a registry holding the vanilla HTML renderer and
// the terminal filler, which answers with the entered values as JSON.
func DefaultRegistry() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, fmt.Errorf("formbuilder: vanilla renderer: %w", err)
	}
	terminal, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("formbuilder: tui renderer: %w", err)
	}
	registry := render.NewRegistry()
	for _, renderer := range []render.Renderer{html, terminal} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (a *App) Builder() *builder.Builder { return a.builder }

func (a *App) Registry() *render.Registry { return a.registry }

// Render draws the current builder state with the named renderer, or the
// default renderer when name is empty.
func (a *App) Render(ctx context.Context, name string, title string, opts render.RenderOptions) ([]byte, error) {
	if name == "" {
		name = a.defaultRenderer
	}
	renderer, err := a.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, render.NewPage(title, a.builder.Snapshot()), opts)
}

// Handler builds the HTTP surface around the App's builder using the default
// renderer.
func (a *App) Handler(fns ...server.OptionFn) (*server.Handler, error) {
	renderer, err := a.registry.Get(a.defaultRenderer)
	if err != nil {
		return nil, err
	}
	opts := append([]server.OptionFn{server.WithRenderer(renderer), server.WithLogger(a.logger)}, fns...)
	return server.New(a.builder, opts...)
}

// Close releases the store when New opened it.
func (a *App) Close() error {
	if a.store == nil || !a.ownsStore {
		return nil
	}
	return a.store.Close()
}

// RenderFields renders a field list without persistence, e.g. to preview an
// exported form.json.
func RenderFields(ctx context.Context, fields []model.Field, rendererName string, opts render.RenderOptions) ([]byte, error) {
	app, err := New(ctx, WithStore(storage.NewMemory()))
	if err != nil {
		return nil, err
	}
	if err := app.builder.ReplaceFields(ctx, fields); err != nil {
		if errors.Is(err, builder.ErrInvalidFields) {
			return nil, err
		}
		return nil, fmt.Errorf("formbuilder: %w", err)
	}
	return app.Render(ctx, rendererName, "", opts)
}
