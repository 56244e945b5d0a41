package render

import (
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// MissingCell fills record table cells for fields a record has no value for.
const MissingCell = "-"

// EmptyRecordsText is shown instead of the records table when nothing was saved.
const EmptyRecordsText = "No records saved yet."

// Page is the flattened view of the builder state that templates render.
// Everything a template needs is precomputed so templates never index maps.
type Page struct {
	Title      string          `json:"title"`
	Fields     []FieldView     `json:"fields"`
	FieldTypes []FieldTypeView `json:"field_types"`
	Records    RecordsTable    `json:"records"`
	Duplicates []string        `json:"duplicates"`
	HasFields  bool            `json:"has_fields"`
}

// FieldView is one field with its current form value.
type FieldView struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Type      string       `json:"type"`
	TypeTitle string       `json:"type_title"`
	Value     string       `json:"value"`
	Checked   bool         `json:"checked"`
	Options   []OptionView `json:"options"`
	Index     int          `json:"index"`
	First     bool         `json:"first"`
	Last      bool         `json:"last"`
	// Prev and Next are the ids of the neighbours, empty at the ends.
	Prev string `json:"prev"`
	Next string `json:"next"`
}

// OptionView is one select option.
type OptionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// FieldTypeView is an entry of the editor's type picker.
type FieldTypeView struct {
	Value string `json:"value"`
	Title string `json:"title"`
}

// RecordsTable is the saved records laid out under the current field labels.
type RecordsTable struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Empty     bool       `json:"empty"`
	EmptyText string     `json:"empty_text"`
}

// NewPage builds the view model from a builder snapshot.
func NewPage(title string, snapshot builder.Snapshot) Page {
	if title == "" {
		title = "Form Builder"
	}
	page := Page{
		Title:      title,
		Fields:     fieldViews(snapshot.Fields, snapshot.Values),
		FieldTypes: fieldTypeViews(),
		Records:    NewRecordsTable(snapshot.Fields, snapshot.Records),
		Duplicates: append([]string{}, snapshot.Duplicates...),
		HasFields:  len(snapshot.Fields) > 0,
	}
	return page
}

// NewRecordsTable lays records out under the labels of fields. Values for
// labels a record lacks are rendered as MissingCell.
func NewRecordsTable(fields []model.Field, records []model.Record) RecordsTable {
	headers := model.Labels(fields)
	table := RecordsTable{
		Headers:   headers,
		Rows:      make([][]string, 0, len(records)),
		Empty:     len(records) == 0,
		EmptyText: EmptyRecordsText,
	}
	for _, record := range records {
		row := make([]string, len(headers))
		for i, label := range headers {
			value, ok := record.Get(label)
			if !ok || value == "" {
				value = MissingCell
			}
			row[i] = value
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func fieldViews(fields []model.Field, values model.FormData) []FieldView {
	views := make([]FieldView, 0, len(fields))
	for i, field := range fields {
		value, _ := values.Get(field.Label)
		view := FieldView{
			ID:        field.ID,
			Label:     field.Label,
			Type:      renderType(field.Type),
			TypeTitle: field.Type.Title(),
			Value:     value,
			Checked:   field.Type == model.FieldTypeCheckbox && value == "true",
			Options:   make([]OptionView, 0, len(field.Options)),
			Index:     i,
			First:     i == 0,
			Last:      i == len(fields)-1,
		}
		if i > 0 {
			view.Prev = fields[i-1].ID
		}
		if i < len(fields)-1 {
			view.Next = fields[i+1].ID
		}
		for _, option := range field.Options {
			view.Options = append(view.Options, OptionView{Value: option, Selected: option == value})
		}
		views = append(views, view)
	}
	return views
}

// renderType falls back to a text input for types without a dedicated control.
func renderType(t model.FieldType) string {
	if t.Valid() {
		return string(t)
	}
	return string(model.FieldTypeText)
}

func fieldTypeViews() []FieldTypeView {
	views := make([]FieldTypeView, 0, len(model.FieldTypes))
	for _, t := range model.FieldTypes {
		views = append(views, FieldTypeView{Value: string(t), Title: t.Title()})
	}
	return views
}
