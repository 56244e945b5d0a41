package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FormData holds the values typed into the rendered form keyed by field label.
// Keys keep the order in which they were first set. The zero value is ready to
// use. FormData is not safe for concurrent use; the builder guards it.
type FormData struct {
	keys   []string
	values map[string]string
}

// NewFormData seeds a FormData from ordered key/value pairs.
func NewFormData(pairs ...Entry) FormData {
	var data FormData
	for _, pair := range pairs {
		data.Set(pair.Key, pair.Value)
	}
	return data
}

// Entry is a single key/value pair of FormData or a Record.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Set stores value under key, appending key to the order when new.
func (d *FormData) Set(key, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key.
func (d FormData) Get(key string) (string, bool) {
	value, ok := d.values[key]
	return value, ok
}

// Delete removes key, keeping the relative order of the rest.
func (d *FormData) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, existing := range d.keys {
		if existing == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Retain drops every key for which keep returns false.
func (d *FormData) Retain(keep func(key string) bool) {
	for _, key := range d.Keys() {
		if !keep(key) {
			d.Delete(key)
		}
	}
}

// Len reports the number of keys.
func (d FormData) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d FormData) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Entries returns the key/value pairs in insertion order.
func (d FormData) Entries() []Entry {
	out := make([]Entry, 0, len(d.keys))
	for _, key := range d.keys {
		out = append(out, Entry{Key: key, Value: d.values[key]})
	}
	return out
}

// Map returns an unordered copy of the values.
func (d FormData) Map() map[string]string {
	out := make(map[string]string, len(d.values))
	for key, value := range d.values {
		out[key] = value
	}
	return out
}

// Clone returns an independent copy.
func (d FormData) Clone() FormData {
	return NewFormData(d.Entries()...)
}

// MarshalJSON encodes FormData as a JSON object preserving key order.
func (d FormData) MarshalJSON() ([]byte, error) {
	return marshalOrdered(d.Entries())
}

// UnmarshalJSON decodes a flat JSON object of string values, keeping the
// document's key order.
func (d *FormData) UnmarshalJSON(data []byte) error {
	entries, err := unmarshalOrdered(data)
	if err != nil {
		return err
	}
	*d = NewFormData(entries...)
	return nil
}

// Record is a saved, immutable snapshot of FormData.
type Record struct {
	data FormData
}

// NewRecord freezes a copy of data.
func NewRecord(data FormData) Record {
	return Record{data: data.Clone()}
}

// Get returns the value saved under key.
func (r Record) Get(key string) (string, bool) { return r.data.Get(key) }

// Keys returns the saved keys in insertion order.
func (r Record) Keys() []string { return r.data.Keys() }

// Len reports the number of saved keys.
func (r Record) Len() int { return r.data.Len() }

// Entries returns the saved pairs in insertion order.
func (r Record) Entries() []Entry { return r.data.Entries() }

// Map returns an unordered copy of the saved values.
func (r Record) Map() map[string]string { return r.data.Map() }

// MarshalJSON encodes the record as a JSON object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) { return r.data.MarshalJSON() }

// UnmarshalJSON decodes a flat JSON object into the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fd FormData
	if err := fd.UnmarshalJSON(data); err != nil {
		return err
	}
	r.data = fd
	return nil
}

func marshalOrdered(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errNotObject = errors.New("model: expected a JSON object")

func unmarshalOrdered(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		value, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("model: value for %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// scalarString accepts strings, numbers, booleans, and null so records written
// by other tools still load; nested values are rejected.
func scalarString(raw json.RawMessage) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, float64:
		return string(bytes.TrimSpace(raw)), nil
	default:
		return "", errors.New("nested values are not supported")
	}
}
