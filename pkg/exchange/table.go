package exchange

import "github.com/goliatone/go-formbuilder/pkg/model"

// Table is the tabular view of a set of records. Columns are the union of the
// record keys in the order they first appear.
type Table struct {
	Columns []string
	Records []model.Record
}

// NewTable derives the column set from records.
func NewTable(records []model.Record) Table {
	seen := make(map[string]struct{})
	var columns []string
	for _, record := range records {
		for _, key := range record.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return Table{Columns: columns, Records: records}
}

// Rows returns one cell slice per record aligned with Columns. Missing values
// are empty strings.
func (t Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Records))
	for _, record := range t.Records {
		row := make([]string, len(t.Columns))
		for i, column := range t.Columns {
			row[i], _ = record.Get(column)
		}
		rows = append(rows, row)
	}
	return rows
}
