package exchange

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported records.
const SheetName = "Data"

// XLSXExporter writes a workbook with a single Data sheet.
type XLSXExporter struct{}

func (XLSXExporter) Format() Format { return FormatXLSX }
func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXExporter) Extension() string { return "xlsx" }

func (XLSXExporter) Export(ctx context.Context, table Table) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(book, 1, table.Columns); err != nil {
		return nil, err
	}
	for i, row := range table.Rows() {
		if err := writeRow(book, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(book *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]any, len(cells))
	for i, value := range cells {
		values[i] = value
	}
	if err := book.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
