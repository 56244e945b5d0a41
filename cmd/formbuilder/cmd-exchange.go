package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-formbuilder/pkg/exchange"
)

// Alert texts printed to stderr next to the returned error.
const (
	alertImportFailed = "Error importing form. Make sure it's a valid JSON file."
	alertNoFields     = "No fields to export!"
	alertNoRecords    = "No records to export"
	alertEmptyForm    = "Fill out the form before saving!"
)

var (
	// errImportFailed is reported for any rejected import document.
	errImportFailed = errors.New("import rejected")
	errNoFields     = errors.New("no fields to export")
	errNoRecords    = errors.New("no records to export")
)

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"Exported form.json to load."`
}

func (i *importCmd) Run(g *globalOptions) error {
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	file, err := os.Open(i.File)
	if err != nil {
		return err
	}
	defer file.Close()

	fields, err := rt.builder.Import(ctx, file)
	if errors.Is(err, exchange.ErrInvalidImport) {
		fmt.Fprintln(g.stderr(), alertImportFailed)
		return fmt.Errorf("%w: %v", errImportFailed, err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Imported %d fields from %s\n", len(fields), i.File)
	return nil
}

type exportFormCmd struct {
	Format string `enum:"json,openapi" default:"json" help:"Export format: json or openapi."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (e *exportFormCmd) Run(g *globalOptions) error {
	rt, err := g.open(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	fields := rt.builder.Fields()
	var file exchange.File
	switch e.Format {
	case "openapi":
		file, err = exchange.ExportFieldsOpenAPI(fields, exchange.OpenAPIInfo{Title: rt.cfg.Server.Title, Version: Version})
	default:
		file, err = exchange.ExportFields(fields)
	}
	if errors.Is(err, exchange.ErrNothingToExport) {
		fmt.Fprintln(g.stderr(), alertNoFields)
		return errNoFields
	}
	if err != nil {
		return err
	}

	if e.Output == "" {
		_, err = g.stdout().Write(file.Data)
		return err
	}
	path, err := writeFile(e.Output, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stderr(), "Form written to %s\n", path)
	return nil
}

type previewCmd struct{}

func (p *previewCmd) Run(g *globalOptions) error {
	rt, err := g.open(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	renderFieldsTable(g.stdout(), rt.builder.Fields())
	return nil
}
