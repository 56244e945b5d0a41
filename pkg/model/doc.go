// Package model defines the data the form builder works with: field
// descriptors (Field), the in-progress values of a filled form (FormData), and
// the frozen snapshots saved from it (Record).
//
// Field JSON mirrors the persisted and exported layout
// (`{"id","label","type","options"}`) so the same bytes travel between the
// storage adapter, form exports, and imports. FormData and Record preserve key
// insertion order; exporters rely on that order when deriving spreadsheet
// columns.
package model
