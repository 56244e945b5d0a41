package exchange

import (
	"context"
	"encoding/json"
)

// JSONExporter writes records as a pretty printed array of objects. Each object
// carries only the keys its record holds, in record order.
type JSONExporter struct{}

func (JSONExporter) Format() Format      { return FormatJSON }
func (JSONExporter) ContentType() string { return "application/json" }
func (JSONExporter) Extension() string   { return "json" }

func (JSONExporter) Export(ctx context.Context, table Table) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(table.Records, "", "  ")
}
