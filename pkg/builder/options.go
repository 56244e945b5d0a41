package builder

import (
	"github.com/go-kit/log"

	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// Option configures a Builder.
type Option func(*Builder)

// WithStore persists the field list through store. Without it the builder
// keeps an in-memory store.
func WithStore(store storage.Store) Option {
	return func(b *Builder) {
		if store != nil {
			b.store = store
		}
	}
}

// WithKey overrides the storage key holding the field list.
func WithKey(key string) Option {
	return func(b *Builder) {
		if key != "" {
			b.key = key
		}
	}
}

// WithIDGenerator overrides the default timestamp id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(b *Builder) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger log.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}
