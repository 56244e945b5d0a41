package exchange

import "errors"

var (
	// ErrNothingToExport reports an export of an empty collection.
	ErrNothingToExport = errors.New("exchange: nothing to export")
	// ErrInvalidImport wraps every reason an imported field list is rejected.
	ErrInvalidImport = errors.New("exchange: invalid import")
	// ErrUnknownFormat reports an export format with no registered exporter.
	ErrUnknownFormat = errors.New("exchange: unknown format")
)
