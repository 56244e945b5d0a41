package exchange

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Exporter encodes a Table into a downloadable document.
type Exporter interface {
	Format() Format
	ContentType() string
	Extension() string
	Export(ctx context.Context, table Table) ([]byte, error)
}

// Registry stores exporters by format.
type Registry struct {
	mu        sync.RWMutex
	exporters map[Format]Exporter
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[Format]Exporter)}
}

// DefaultRegistry returns a registry holding the json, csv and xlsx exporters.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.MustRegister(JSONExporter{})
	registry.MustRegister(CSVExporter{})
	registry.MustRegister(XLSXExporter{})
	return registry
}

// Register adds an exporter by its Format(). Duplicate formats return an error.
func (r *Registry) Register(exporter Exporter) error {
	if exporter == nil {
		return fmt.Errorf("exchange: exporter is required")
	}
	format := exporter.Format()
	if format == "" {
		return fmt.Errorf("exchange: exporter format is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.exporters[format]; exists {
		return fmt.Errorf("exchange: exporter %q already registered", format)
	}
	r.exporters[format] = exporter
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(exporter Exporter) {
	if err := r.Register(exporter); err != nil {
		panic(err)
	}
}

// Get retrieves the exporter for format.
func (r *Registry) Get(format Format) (Exporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exporter, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return exporter, nil
}

// List returns the registered formats sorted by name.
func (r *Registry) List() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.exporters))
	for format := range r.exporters {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
