package exchange

import (
	"bytes"
	"context"
	"encoding/csv"
)

// CSVExporter writes a header row followed by one row per record.
type CSVExporter struct{}

func (CSVExporter) Format() Format      { return FormatCSV }
func (CSVExporter) ContentType() string { return "text/csv" }
func (CSVExporter) Extension() string   { return "csv" }

func (CSVExporter) Export(ctx context.Context, table Table) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(table.Columns); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(table.Rows()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
