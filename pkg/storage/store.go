// Package storage persists small keyed payloads for the form builder. It plays
// the role browser local storage plays for a client-side builder: one key per
// document, whole-value reads and writes, and explicit removal.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// DefaultKey is the key the builder keeps the field list under.
const DefaultKey = "formFields"

// Driver identifies a Store backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Store is a minimal key/value persistence adapter.
type Store interface {
	Driver() Driver
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	Driver Driver `yaml:"driver"`
	// Path is the directory for the file driver and the database file for the
	// sqlite driver. Ignored by the memory driver.
	Path string `yaml:"path"`
	// Key overrides DefaultKey.
	Key string `yaml:"key"`
	// DSN is the postgres connection string.
	DSN string   `yaml:"dsn"`
	S3  S3Config `yaml:"s3"`
}

// Open constructs the Store named by cfg.Driver (memory when empty).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))
	if driver == "" {
		driver = DriverMemory
	}
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path)
	case DriverSQLite:
		return NewSQLite(ctx, cfg.Path)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.DSN)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: key is required")
	}
	return nil
}
