// Package exchange moves form data in and out of the builder: saved records
// are exported as JSON, CSV or XLSX, and the field list itself is exported and
// imported as JSON so a form can be shared and reloaded.
package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalises a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(raw)))
	switch format {
	case FormatJSON, FormatCSV, FormatXLSX:
		return format, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// File is a generated download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// RecordsBaseName is the download name, without extension, used for record
// exports.
const RecordsBaseName = "data"

// ExportRecords encodes records with the exporter registered for format.
// Exporting zero records yields ErrNothingToExport and no file.
func ExportRecords(ctx context.Context, registry *Registry, format Format, records []model.Record) (File, error) {
	if len(records) == 0 {
		return File{}, ErrNothingToExport
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	exporter, err := registry.Get(format)
	if err != nil {
		return File{}, err
	}

	data, err := exporter.Export(ctx, NewTable(records))
	if err != nil {
		return File{}, fmt.Errorf("exchange: export %s: %w", format, err)
	}
	return File{
		Name:        RecordsBaseName + "." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}
