package builder

import "errors"

var (
	// ErrLabelRequired rejects a field whose label is empty after trimming.
	ErrLabelRequired = errors.New("builder: label is required")
	// ErrUnknownType rejects a field type outside model.FieldTypes.
	ErrUnknownType = errors.New("builder: unknown field type")
	// ErrFieldNotFound reports an id that names no current field.
	ErrFieldNotFound = errors.New("builder: field not found")
	// ErrUnknownField reports a form value keyed by a label no field carries.
	ErrUnknownField = errors.New("builder: unknown field label")
	// ErrEmptyForm rejects saving a record before any value was entered.
	ErrEmptyForm = errors.New("builder: form is empty")
	// ErrInvalidFields rejects a replacement field list with missing or
	// repeated ids.
	ErrInvalidFields = errors.New("builder: invalid field list")
)
