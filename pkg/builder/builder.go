// Package builder owns the state of a form under construction: the ordered
// field list, the values typed into the rendered form, and the records saved
// from it. Every field list change is written through to a storage.Store so a
// restarted builder resumes where it left off. Builder methods are safe for
// concurrent use.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/goliatone/go-formbuilder/pkg/exchange"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// Builder holds the fields, the current form values and the saved records.
type Builder struct {
	mu      sync.RWMutex
	fields  []model.Field
	data    model.FormData
	records []model.Record

	store  storage.Store
	key    string
	ids    IDGenerator
	logger log.Logger
}

// Snapshot is a consistent copy of the builder state.
type Snapshot struct {
	Fields     []model.Field
	Values     model.FormData
	Records    []model.Record
	Duplicates []string
}

// New creates a builder and loads any field list persisted under its key. A
// persisted value that cannot be decoded is logged and ignored.
func New(ctx context.Context, opts ...Option) (*Builder, error) {
	b := &Builder{
		key:    storage.DefaultKey,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.store == nil {
		b.store = storage.NewMemory()
	}
	if b.ids == nil {
		b.ids = NewTimestampIDs(nil)
	}
	b.logger = log.With(b.logger, "component", "builder")

	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Builder) load(ctx context.Context) error {
	raw, err := b.store.Get(ctx, b.key)
	if errors.Is(err, storage.ErrNotFound) {
		b.fields = []model.Field{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("builder: load fields: %w", err)
	}

	fields, err := exchange.DecodeFields(bytes.NewReader(raw))
	if err != nil {
		level.Warn(b.logger).Log("msg", "ignoring unreadable persisted fields", "key", b.key, "err", err)
		b.fields = []model.Field{}
		return nil
	}
	b.fields = fields
	level.Debug(b.logger).Log("msg", "loaded persisted fields", "key", b.key, "count", len(fields))
	b.warnDuplicates()
	return nil
}

// persist writes the field list. Callers hold b.mu.
func (b *Builder) persist(ctx context.Context) error {
	payload := model.CloneFields(b.fields)
	for i := range payload {
		if payload[i].Options == nil {
			payload[i].Options = []string{}
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("builder: encode fields: %w", err)
	}
	if err := b.store.Put(ctx, b.key, raw); err != nil {
		level.Error(b.logger).Log("msg", "failed to persist fields", "key", b.key, "err", err)
		return fmt.Errorf("builder: persist fields: %w", err)
	}
	return nil
}

// AddField validates input and appends a new field with a fresh id.
func (b *Builder) AddField(ctx context.Context, input model.FieldInput) (model.Field, error) {
	label := sanitizeLabel(input.Label)
	if label == "" {
		return model.Field{}, ErrLabelRequired
	}
	kind, ok := model.ParseFieldType(input.Type)
	if !ok {
		return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownType, input.Type)
	}
	options := []string{}
	if kind == model.FieldTypeSelect {
		options = model.ParseOptions(input.Options)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	field := model.Field{
		ID:      b.ids.Next(b.hasID),
		Label:   label,
		Type:    kind,
		Options: options,
	}
	b.fields = append(b.fields, field)
	level.Info(b.logger).Log("msg", "field added", "id", field.ID, "label", field.Label, "type", field.Type)
	b.warnDuplicates()

	return field.Clone(), b.persist(ctx)
}

// RemoveField deletes the field with id and drops its form value unless another
// field shares the label.
func (b *Builder) RemoveField(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := model.IndexOf(b.fields, id)
	if index < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	removed := b.fields[index]
	b.fields = append(b.fields[:index:index], b.fields[index+1:]...)
	b.pruneValues()
	level.Info(b.logger).Log("msg", "field removed", "id", removed.ID, "label", removed.Label)

	return b.persist(ctx)
}

// MoveField moves the field activeID to the position currently held by
// overID, shifting the fields in between. It reports whether the order changed;
// an empty overID, identical ids or unknown ids leave the list untouched.
func (b *Builder) MoveField(ctx context.Context, activeID, overID string) (bool, error) {
	if overID == "" || activeID == overID {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	from := model.IndexOf(b.fields, activeID)
	to := model.IndexOf(b.fields, overID)
	if from < 0 || to < 0 {
		return false, nil
	}
	return true, b.moveLocked(ctx, from, to)
}

// MoveFieldTo moves the field id to index, clamped to the list bounds.
func (b *Builder) MoveFieldTo(ctx context.Context, id string, index int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := model.IndexOf(b.fields, id)
	if from < 0 {
		return false, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if index < 0 {
		index = 0
	}
	if last := len(b.fields) - 1; index > last {
		index = last
	}
	if from == index {
		return false, nil
	}
	return true, b.moveLocked(ctx, from, index)
}

func (b *Builder) moveLocked(ctx context.Context, from, to int) error {
	b.fields = model.Move(b.fields, from, to)
	level.Debug(b.logger).Log("msg", "field moved", "from", from, "to", to)
	return b.persist(ctx)
}

// Fields returns a copy of the ordered field list.
func (b *Builder) Fields() []model.Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return model.CloneFields(b.fields)
}

// Field returns the field with id.
func (b *Builder) Field(id string) (model.Field, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	index := model.IndexOf(b.fields, id)
	if index < 0 {
		return model.Field{}, false
	}
	return b.fields[index].Clone(), true
}

// ReplaceFields swaps the whole field list, typically with an imported one.
// Every field needs a non-empty, unique id.
func (b *Builder) ReplaceFields(ctx context.Context, fields []model.Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidFields)
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidFields, field.ID)
		}
		seen[field.ID] = struct{}{}
	}

	replacement := model.CloneFields(fields)
	if replacement == nil {
		replacement = []model.Field{}
	}
	for i := range replacement {
		if replacement[i].Options == nil {
			replacement[i].Options = []string{}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.fields = replacement
	b.pruneValues()
	level.Info(b.logger).Log("msg", "fields replaced", "count", len(replacement))
	b.warnDuplicates()
	return b.persist(ctx)
}

// Import decodes an exported field list from r and replaces the current one.
// A rejected document leaves the builder untouched.
func (b *Builder) Import(ctx context.Context, r io.Reader) ([]model.Field, error) {
	fields, err := exchange.DecodeFields(r)
	if err != nil {
		level.Warn(b.logger).Log("msg", "import rejected", "err", err)
		return nil, err
	}
	if err := b.ReplaceFields(ctx, fields); err != nil {
		return nil, err
	}
	return model.CloneFields(fields), nil
}

// Clear removes every field, their form values and the persisted list.
func (b *Builder) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fields = []model.Field{}
	b.data = model.FormData{}
	level.Info(b.logger).Log("msg", "fields cleared")

	if err := b.store.Delete(ctx, b.key); err != nil {
		level.Error(b.logger).Log("msg", "failed to delete persisted fields", "key", b.key, "err", err)
		return fmt.Errorf("builder: clear fields: %w", err)
	}
	return nil
}

// SetValue records the form value for the field labelled label.
func (b *Builder) SetValue(label, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasLabel(label) {
		return fmt.Errorf("%w: %q", ErrUnknownField, label)
	}
	b.data.Set(label, value)
	return nil
}

// UpdateValues sets every entry of values and drops the cleared labels in one
// step. A label no field carries rejects the whole update.
func (b *Builder) UpdateValues(values model.FormData, cleared ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkLabels(values); err != nil {
		return err
	}
	for _, entry := range values.Entries() {
		b.data.Set(entry.Key, entry.Value)
	}
	for _, label := range cleared {
		b.data.Delete(label)
	}
	return nil
}

// ClearValue drops the form value for label.
func (b *Builder) ClearValue(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data.Delete(label)
}

// Values returns a copy of the current form values.
func (b *Builder) Values() model.FormData {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Clone()
}

// SaveRecord snapshots the form values as a new record and resets the form. A
// key counts as entered even when its value is empty.
func (b *Builder) SaveRecord() (model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data.Len() == 0 {
		return model.Record{}, ErrEmptyForm
	}
	record := model.NewRecord(b.data)
	b.records = append(b.records, record)
	b.data = model.FormData{}
	level.Info(b.logger).Log("msg", "record saved", "keys", record.Len(), "records", len(b.records))
	return record, nil
}

// SaveValues appends values as a record without touching the live form
// values. Every key must name a current field.
func (b *Builder) SaveValues(values model.FormData) (model.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if values.Len() == 0 {
		return model.Record{}, ErrEmptyForm
	}
	if err := b.checkLabels(values); err != nil {
		return model.Record{}, err
	}
	record := model.NewRecord(values)
	b.records = append(b.records, record)
	level.Info(b.logger).Log("msg", "record saved", "keys", record.Len(), "records", len(b.records))
	return record, nil
}

// Records returns the saved records in save order.
func (b *Builder) Records() []model.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Record(nil), b.records...)
}

// DuplicateLabels lists labels carried by more than one field. Their form
// values share a single key.
func (b *Builder) DuplicateLabels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return duplicateLabels(b.fields)
}

// Snapshot copies the complete state under a single read lock.
func (b *Builder) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Fields:     model.CloneFields(b.fields),
		Values:     b.data.Clone(),
		Records:    append([]model.Record(nil), b.records...),
		Duplicates: duplicateLabels(b.fields),
	}
}

func (b *Builder) hasID(id string) bool {
	return model.IndexOf(b.fields, id) >= 0
}

func (b *Builder) checkLabels(values model.FormData) error {
	for _, label := range values.Keys() {
		if !b.hasLabel(label) {
			return fmt.Errorf("%w: %q", ErrUnknownField, label)
		}
	}
	return nil
}

func (b *Builder) hasLabel(label string) bool {
	for _, field := range b.fields {
		if field.Label == label {
			return true
		}
	}
	return false
}

func (b *Builder) pruneValues() {
	b.data.Retain(b.hasLabel)
}

func (b *Builder) warnDuplicates() {
	if dups := duplicateLabels(b.fields); len(dups) > 0 {
		level.Warn(b.logger).Log("msg", "fields share a label; their values collide", "labels", strings.Join(dups, ","))
	}
}

func duplicateLabels(fields []model.Field) []string {
	counts := make(map[string]int, len(fields))
	for _, field := range fields {
		counts[field.Label]++
	}
	var dups []string
	for label, count := range counts {
		if count > 1 {
			dups = append(dups, label)
		}
	}
	sort.Strings(dups)
	return dups
}
