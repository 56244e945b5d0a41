package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldsFileName is the download name of an exported field list.
const FieldsFileName = "form.json"

// ErrNoFields reports an attempt to export an empty field list.
var ErrNoFields = fmt.Errorf("%w: no fields", ErrNothingToExport)

// ExportFields encodes the field list as pretty printed JSON.
func ExportFields(fields []model.Field) (File, error) {
	if len(fields) == 0 {
		return File{}, ErrNoFields
	}
	normalized := model.CloneFields(fields)
	for i := range normalized {
		if normalized[i].Options == nil {
			normalized[i].Options = []string{}
		}
	}
	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return File{}, fmt.Errorf("exchange: encode fields: %w", err)
	}
	return File{Name: FieldsFileName, ContentType: "application/json", Data: data}, nil
}

// DecodeFields parses an exported field list. The document must be a JSON
// array of objects each carrying a non-empty string id, label and type, and an
// optional array of string options. Ids must be unique. Any violation rejects
// the whole document with an error wrapping ErrInvalidImport.
func DecodeFields(r io.Reader) ([]model.Field, error) {
	decoder := json.NewDecoder(r)
	var items []json.RawMessage
	if err := decoder.Decode(&items); err != nil {
		return nil, invalidImport("document must be a JSON array: %v", err)
	}
	if items == nil {
		return nil, invalidImport("document must be a JSON array")
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, invalidImport("unexpected data after field list")
	}

	fields := make([]model.Field, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, raw := range items {
		field, err := decodeField(raw)
		if err != nil {
			return nil, invalidImport("field %d: %v", i, err)
		}
		if _, dup := seen[field.ID]; dup {
			return nil, invalidImport("field %d: duplicate id %q", i, field.ID)
		}
		seen[field.ID] = struct{}{}
		fields = append(fields, field)
	}
	return fields, nil
}

func decodeField(raw json.RawMessage) (model.Field, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return model.Field{}, errors.New("must be an object")
	}

	id, err := requiredString(object, "id")
	if err != nil {
		return model.Field{}, err
	}
	label, err := requiredString(object, "label")
	if err != nil {
		return model.Field{}, err
	}
	kind, err := requiredString(object, "type")
	if err != nil {
		return model.Field{}, err
	}

	options := []string{}
	if rawOptions, ok := object["options"]; ok && !isNull(rawOptions) {
		if err := json.Unmarshal(rawOptions, &options); err != nil {
			return model.Field{}, errors.New("options must be an array of strings")
		}
		if options == nil {
			options = []string{}
		}
	}

	return model.Field{
		ID:      id,
		Label:   label,
		Type:    model.FieldType(kind),
		Options: options,
	}, nil
}

func requiredString(object map[string]json.RawMessage, key string) (string, error) {
	raw, ok := object[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%q must be a string", key)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%q must not be empty", key)
	}
	return value, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func invalidImport(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidImport, fmt.Sprintf(format, args...))
}
