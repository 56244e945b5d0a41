package model

import "strings"

// FieldType enumerates the input kinds a field can render as.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
)

// FieldTypes lists the supported types in editor order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeTextarea,
	FieldTypeCheckbox,
	FieldTypeSelect,
}

var fieldTypeTitles = map[FieldType]string{
	FieldTypeText:     "Text",
	FieldTypeNumber:   "Number",
	FieldTypeDate:     "Date",
	FieldTypeTextarea: "Textarea",
	FieldTypeCheckbox: "Checkbox",
	FieldTypeSelect:   "Dropdown",
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	_, ok := fieldTypeTitles[t]
	return ok
}

// Title returns the human label shown in type pickers. Unknown types echo
// their raw value.
func (t FieldType) Title() string {
	if title, ok := fieldTypeTitles[t]; ok {
		return title
	}
	return string(t)
}

// ParseFieldType normalises raw user input into a FieldType. Empty input maps
// to FieldTypeText; the boolean reports whether the value is supported.
func ParseFieldType(raw string) (FieldType, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return FieldTypeText, true
	}
	t := FieldType(trimmed)
	return t, t.Valid()
}

// Field describes one input of the form. Fields are created by the editor and
// never mutated afterwards; imports replace the list wholesale.
type Field struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options"`
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Options = append(make([]string, 0, len(f.Options)), f.Options...)
	return out
}

// HasOptions reports whether the field renders a choice list.
func (f Field) HasOptions() bool {
	return f.Type == FieldTypeSelect && len(f.Options) > 0
}

// FieldInput captures the add-field editor state before a Field is created.
// Options holds the raw comma separated string typed by the user and is only
// honoured for select fields.
type FieldInput struct {
	Label   string `json:"label"`
	Type    string `json:"type"`
	Options string `json:"options,omitempty"`
}

// CloneFields deep copies a field list.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// IndexOf returns the position of the field with the given id or -1.
func IndexOf(fields []Field, id string) int {
	for i, field := range fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// Labels returns the labels of fields in list order.
func Labels(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Label)
	}
	return out
}
