// Package postgres provides a PostgreSQL implementation of settings.Store.
// The document is stored as a single JSONB row, so operators can inspect or
// repair it with plain SQL. It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bmertz/falpipe/pkg/settings"
)

// Store is a PostgreSQL-backed settings store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements settings.Store at compile time.
var _ settings.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Get returns the stored settings document.
func (s *Store) Get(ctx context.Context) (settings.Settings, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		"SELECT document FROM pipe_settings WHERE id = 1",
	).Scan(&data)

	if errors.Is(err, pgx.ErrNoRows) {
		return settings.Settings{}, settings.ErrNotFound
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("querying settings: %w", err)
	}

	var doc settings.Settings
	if err := json.Unmarshal(data, &doc); err != nil {
		return settings.Settings{}, fmt.Errorf("unmarshaling settings: %w", err)
	}
	return doc, nil
}

// Put replaces the stored document, creating it when absent.
func (s *Store) Put(ctx context.Context, doc settings.Settings) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pipe_settings (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = now()
	`, data)
	if err != nil {
		return fmt.Errorf("storing settings: %w", err)
	}
	return nil
}

// EnsureDefault stores doc only when no document exists yet. Called at
// startup to seed the configured initial settings without clobbering edits
// an operator made through the API.
func (s *Store) EnsureDefault(ctx context.Context, doc settings.Settings) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pipe_settings (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO NOTHING
	`, data)
	if err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
