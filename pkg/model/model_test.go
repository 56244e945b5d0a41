package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOptions(t *testing.T) {
	cases := map[string][]string{
		"":                       {},
		"red, green ,blue":       {"red", "green", "blue"},
		" , a,, b , ":            {"a", "b"},
		"single":                 {"single"},
		"with space,  two words": {"with space", "two words"},
	}
	for raw, want := range cases {
		got := ParseOptions(raw)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("ParseOptions(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestParseFieldType(t *testing.T) {
	if got, ok := ParseFieldType(""); !ok || got != FieldTypeText {
		t.Fatalf("empty type: got %q ok=%v", got, ok)
	}
	if got, ok := ParseFieldType(" Select "); !ok || got != FieldTypeSelect {
		t.Fatalf("select type: got %q ok=%v", got, ok)
	}
	if _, ok := ParseFieldType("colour"); ok {
		t.Fatalf("expected unsupported type to be rejected")
	}
	if FieldTypeSelect.Title() != "Dropdown" {
		t.Fatalf("select title: got %q", FieldTypeSelect.Title())
	}
}

func TestMove(t *testing.T) {
	in := []string{"A", "B", "C"}

	cases := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"B", "C", "A"}},
		{2, 0, []string{"C", "A", "B"}},
		{1, 1, []string{"A", "B", "C"}},
		{0, 1, []string{"B", "A", "C"}},
		{-1, 1, []string{"A", "B", "C"}},
		{0, 3, []string{"A", "B", "C"}},
	}
	for _, tc := range cases {
		got := Move(in, tc.from, tc.to)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Move(%d,%d) mismatch (-want +got):\n%s", tc.from, tc.to, diff)
		}
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestFormDataKeepsInsertionOrder(t *testing.T) {
	var data FormData
	data.Set("Name", "Alice")
	data.Set("Age", "30")
	data.Set("Name", "Bob")

	if diff := cmp.Diff([]string{"Name", "Age"}, data.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"Name":"Bob","Age":"30"}` {
		t.Fatalf("unexpected json: %s", payload)
	}

	data.Delete("Name")
	if data.Len() != 1 {
		t.Fatalf("expected one key after delete, got %d", data.Len())
	}
}

func TestRecordIsDetachedFromFormData(t *testing.T) {
	var data FormData
	data.Set("Name", "Alice")
	record := NewRecord(data)

	data.Set("Name", "Mallory")
	data.Set("Extra", "x")

	if got, _ := record.Get("Name"); got != "Alice" {
		t.Fatalf("record mutated through form data: %q", got)
	}
	if record.Len() != 1 {
		t.Fatalf("record gained keys: %v", record.Keys())
	}
}

func TestRecordUnmarshalKeepsDocumentOrder(t *testing.T) {
	var record Record
	if err := json.Unmarshal([]byte(`{"z":"1","a":2,"m":true,"n":null}`), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Entry{{"z", "1"}, {"a", "2"}, {"m", "true"}, {"n", ""}}
	if diff := cmp.Diff(want, record.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &record); err == nil {
		t.Fatalf("expected nested value to be rejected")
	}
}
