package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SampleFields returns one field of every supported type with stable ids.
func SampleFields() []model.Field {
	return []model.Field{
		{ID: "1700000000000", Label: "Name", Type: model.FieldTypeText, Options: []string{}},
		{ID: "1700000000001", Label: "Age", Type: model.FieldTypeNumber, Options: []string{}},
		{ID: "1700000000002", Label: "Born", Type: model.FieldTypeDate, Options: []string{}},
		{ID: "1700000000003", Label: "Bio", Type: model.FieldTypeTextarea, Options: []string{}},
		{ID: "1700000000004", Label: "Subscribe", Type: model.FieldTypeCheckbox, Options: []string{}},
		{ID: "1700000000005", Label: "Color", Type: model.FieldTypeSelect, Options: []string{"Red", "Blue"}},
	}
}

// SampleRecords returns two records with partially overlapping keys.
func SampleRecords() []model.Record {
	return []model.Record{
		model.NewRecord(model.NewFormData(
			model.Entry{Key: "Name", Value: "Alice"},
			model.Entry{Key: "Age", Value: "30"},
		)),
		model.NewRecord(model.NewFormData(
			model.Entry{Key: "Name", Value: "Bob"},
			model.Entry{Key: "Color", Value: "Blue"},
		)),
	}
}

// MustLoadFields reads an exported field list fixture.
func MustLoadFields(t *testing.T, path string) []model.Field {
	t.Helper()

	fields, err := LoadFields(path)
	if err != nil {
		t.Fatalf("load fields: %v", err)
	}
	return fields
}

// LoadFields reads an exported field list fixture, returning an error for
// callers managing setup outside of *testing.T.
func LoadFields(path string) ([]model.Field, error) {
	if path == "" {
		return nil, errors.New("testsupport: fields path is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: open fields: %w", err)
	}
	defer file.Close()

	fields, err := exchange.DecodeFields(file)
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode fields: %w", err)
	}
	return fields, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
