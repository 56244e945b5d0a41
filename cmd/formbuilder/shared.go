package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

type globalOptions struct {
	Config    string `help:"Path to a YAML config file." type:"path" placeholder:"FILE"`
	ExpandEnv bool   `name:"config.expand-env" help:"Expand environment variable references in the config file."`

	LogLevel      string `name:"log.level" help:"Override log.level (debug, info, warn, error)."`
	LogFormat     string `name:"log.format" help:"Override log.format (logfmt, json)."`
	StorageDriver string `name:"storage.driver" help:"Override storage.driver (memory, file, sqlite, postgres, s3)."`
	StoragePath   string `name:"storage.path" help:"Override storage.path." type:"path"`

	out    io.Writer        `kong:"-"`
	errOut io.Writer        `kong:"-"`
	driver tui.PromptDriver `kong:"-"`
}

func (g *globalOptions) stdout() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

func (g *globalOptions) stderr() io.Writer {
	if g.errOut == nil {
		return os.Stderr
	}
	return g.errOut
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (g *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.Config, g.ExpandEnv)
	if err != nil {
		return config.Config{}, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = logging.Format(g.LogFormat)
	}
	if g.StorageDriver != "" {
		cfg.Storage.Driver = storage.Driver(g.StorageDriver)
	}
	if g.StoragePath != "" {
		cfg.Storage.Path = g.StoragePath
	}
	return cfg, cfg.Validate()
}

// runtime holds what every command needs: config, logger, store and builder.
type runtime struct {
	cfg     config.Config
	logger  log.Logger
	store   storage.Store
	builder *builder.Builder
}

func (g *globalOptions) open(ctx context.Context) (*runtime, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, g.stderr())
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	ids, err := builder.NewIDGenerator(cfg.Builder.IDStrategy)
	if err != nil {
		store.Close()
		return nil, err
	}
	b, err := builder.New(ctx,
		builder.WithStore(store),
		builder.WithKey(cfg.Storage.Key),
		builder.WithIDGenerator(ids),
		builder.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	level.Debug(logger).Log("msg", "runtime ready", "driver", store.Driver(), "fields", len(b.Fields()))
	return &runtime{cfg: cfg, logger: logger, store: store, builder: b}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}

func (g *globalOptions) prompter() (*tui.Renderer, error) {
	return tui.New(
		tui.WithPromptDriver(g.driver),
		tui.WithOutput(g.stderr()),
		tui.WithOutputFormat(tui.OutputFormatPrettyText),
	)
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func renderFieldsTable(out io.Writer, fields []model.Field) {
	if len(fields) == 0 {
		fmt.Fprintln(out, "No fields yet.")
		return
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "id", "label", "type", "options"})
	for i, field := range fields {
		t.AppendRow(table.Row{i, field.ID, field.Label, field.Type, strings.Join(field.Options, ", ")})
	}
	t.Render()
}

func renderRecordsTable(out io.Writer, fields []model.Field, records []model.Record) {
	view := render.NewRecordsTable(fields, records)
	if view.Empty {
		fmt.Fprintln(out, view.EmptyText)
		return
	}
	t := newTable(out)
	header := make(table.Row, len(view.Headers))
	for i, h := range view.Headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, cells := range view.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}
	t.Render()
}

// writeFile writes file to path, or to its own name in the working directory
// when path is empty, and returns the path written.
func writeFile(path string, file exchange.File) (string, error) {
	if path == "" {
		path = file.Name
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
