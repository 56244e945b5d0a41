package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
)

// DefaultPostgresDSN is used when the postgres driver is selected without a DSN.
const DefaultPostgresDSN = "postgres://localhost/formbuilder?sslmode=disable"

const postgresTable = "formbuilder_kv"

// Postgres keeps values in the formbuilder_kv table of a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects through pgx and ensures the formbuilder_kv table.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	return newPostgresDB(ctx, db)
}

func newPostgresDB(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+postgresTable+` (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create %s table: %w", postgresTable, err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Driver() Driver { return DriverPostgres }

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM `+postgresTable+` WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select %q: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO `+postgresTable+` (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	); err != nil {
		return fmt.Errorf("storage: upsert %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM `+postgresTable+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error { return p.db.Close() }
