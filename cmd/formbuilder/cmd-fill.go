package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log/level"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

type fillCmd struct {
	Export string `help:"Export the saved records as json, csv or xlsx when done."`
	Output string `short:"o" type:"path" help:"Export file path. Defaults to data.<format>."`
	Once   bool   `help:"Save a single record without asking to continue."`
}

func (f *fillCmd) Run(g *globalOptions) error {
	var format exchange.Format
	if f.Export != "" {
		parsed, err := exchange.ParseFormat(f.Export)
		if err != nil {
			return err
		}
		format = parsed
	}

	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	prompter, err := g.prompter()
	if err != nil {
		return err
	}
	fields := rt.builder.Fields()
	if len(fields) == 0 {
		return tui.ErrNoFields
	}

	for {
		answers, err := prompter.Fill(ctx, fields, rt.builder.Values())
		if err != nil {
			return err
		}
		if _, err := rt.builder.SaveValues(answers); err != nil {
			if !errors.Is(err, builder.ErrEmptyForm) {
				return err
			}
			fmt.Fprintln(g.stderr(), alertEmptyForm)
		}
		if f.Once {
			break
		}
		again, err := prompter.Confirm(ctx, "Add another record?")
		if err != nil {
			return err
		}
		if !again {
			break
		}
	}

	records := rt.builder.Records()
	renderRecordsTable(g.stdout(), fields, records)
	if format == "" {
		return nil
	}

	file, err := exchange.ExportRecords(ctx, nil, format, records)
	if errors.Is(err, exchange.ErrNothingToExport) {
		fmt.Fprintln(g.stderr(), alertNoRecords)
		return errNoRecords
	}
	if err != nil {
		return err
	}
	path, err := writeFile(f.Output, file)
	if err != nil {
		return err
	}
	level.Info(rt.logger).Log("msg", "records exported", "path", path, "format", format, "records", len(records))
	fmt.Fprintf(g.stderr(), "Records written to %s\n", path)
	return nil
}
