package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"unicode"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbuilder/pkg/render/template"
)

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithFS loads templates from an fs.FS, typically an embed.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tmpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithGlobals seeds values every template can read.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[key] = value
		}
	}
}

// Engine implements template.TemplateRenderer on a pongo2 template set.
// Parsed files are cached by path.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
	ext   string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine over the templates given with WithFS.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: a template fs.FS is required")
	}

	registerFilters()
	engine := &Engine{
		set:   pongo2.NewSet("formbuilder", pongo2.NewFSLoader(cfg.templates)),
		cache: make(map[string]*pongo2.Template),
		ext:   cfg.extension,
	}
	if len(cfg.globals) > 0 {
		if err := engine.GlobalContext(cfg.globals); err != nil {
			return nil, fmt.Errorf("gotemplate: apply globals: %w", err)
		}
	}
	return engine, nil
}

// Render treats name as inline template source when it contains pongo2 tags
// and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template. The extension is optional.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	return rendered, nil
}

// RenderString parses and executes inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	rendered, err := e.execute(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute inline template: %w", err)
	}
	return rendered, nil
}

// RegisterFilter adds a pongo2 filter. pongo2 filters are process wide, so a
// name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	globals, err := toContext(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(globals)
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

// toContext turns view data into the plain maps pongo2 walks. Values that are
// not already maps, slices or scalars go through encoding/json, so struct json
// tags become template keys.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	plain, err := toPlain(data)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must encode to an object, got %T", plain)
	}
	return pongo2.Context(m), nil
}

func toPlain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, float64:
		return v, nil
	case pongo2.Context:
		return toPlain(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := toPlain(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := toPlain(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

var registerOnce sync.Once

func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("slug") {
			_ = pongo2.RegisterFilter("slug", filterSlug)
		}
	})
}

// filterSlug lowercases a label and collapses every run of characters other
// than letters and digits into one dash.
func filterSlug(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(in.String()) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return pongo2.AsValue(strings.TrimSuffix(b.String(), "-")), nil
}
