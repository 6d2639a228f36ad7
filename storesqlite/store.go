// Package storesqlite implements [github.com/dwirx/notevault/store.Storage]
// on top of a CGo-free SQLite database (modernc.org/sqlite), with schema
// migrations applied through github.com/ladzaretti/migrate from embedded SQL
// files.
package storesqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/dwirx/notevault/store"

	"github.com/ladzaretti/migrate"

	// Package sqlite is a CGo-free port of SQLite/SQLite3.
	_ "modernc.org/sqlite"
)

var (
	//go:embed migrations/sqlite
	embedFS embed.FS

	embeddedMigrations = migrate.EmbeddedMigrations{
		FS:   embedFS,
		Path: "migrations/sqlite",
	}
)

// Store is the sqlite-backed [store.Storage] implementation the CLI wires
// up by default.
type Store struct {
	db *sql.DB
}

var _ store.Storage = (*Store)(nil)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// New opens (creating if necessary) the sqlite database at path and applies
// any pending schema migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errf("storesqlite: open: %w", err)
	}

	m := migrate.New(db, migrate.SQLiteDialect{})

	if _, err := m.Apply(embeddedMigrations); err != nil {
		return nil, errf("storesqlite: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const upsertRecord = `
INSERT INTO records (kind, vault_id, id, data, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (kind, vault_id, id) DO UPDATE SET
	data = excluded.data,
	updated_at = excluded.updated_at;
`

func (s *Store) Put(ctx context.Context, kind store.Kind, vaultID, id string, record []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertRecord, string(kind), vaultID, id, record); err != nil {
		return errf("storesqlite: put: %w", err)
	}

	return nil
}

const selectRecord = `SELECT data FROM records WHERE kind = ? AND vault_id = ? AND id = ?;`

func (s *Store) Get(ctx context.Context, kind store.Kind, vaultID, id string) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx, selectRecord, string(kind), vaultID, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}

	if err != nil {
		return nil, errf("storesqlite: get: %w", err)
	}

	return data, nil
}

const deleteRecord = `DELETE FROM records WHERE kind = ? AND vault_id = ? AND id = ?;`

func (s *Store) Delete(ctx context.Context, kind store.Kind, vaultID, id string) error {
	if _, err := s.db.ExecContext(ctx, deleteRecord, string(kind), vaultID, id); err != nil {
		return errf("storesqlite: delete: %w", err)
	}

	return nil
}

const scanRecords = `SELECT id, data FROM records WHERE kind = ? AND vault_id = ?;`

func (s *Store) Scan(ctx context.Context, kind store.Kind, vaultID string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, scanRecords, string(kind), vaultID)
	if err != nil {
		return nil, errf("storesqlite: scan: %w", err)
	}
	defer rows.Close()

	out := map[string][]byte{}

	for rows.Next() {
		var (
			id   string
			data []byte
		)

		if err := rows.Scan(&id, &data); err != nil {
			return nil, errf("storesqlite: scan row: %w", err)
		}

		out[id] = data
	}

	if err := rows.Err(); err != nil {
		return nil, errf("storesqlite: scan rows: %w", err)
	}

	return out, nil
}

const upsertKV = `
INSERT INTO kv (slot, data, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (slot) DO UPDATE SET
	data = excluded.data,
	updated_at = excluded.updated_at;
`

func (s *Store) PutKV(ctx context.Context, slot store.Slot, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertKV, string(slot), value); err != nil {
		return errf("storesqlite: put kv: %w", err)
	}

	return nil
}

const selectKV = `SELECT data FROM kv WHERE slot = ?;`

func (s *Store) GetKV(ctx context.Context, slot store.Slot) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx, selectKV, string(slot)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}

	if err != nil {
		return nil, errf("storesqlite: get kv: %w", err)
	}

	return data, nil
}

const deleteKV = `DELETE FROM kv WHERE slot = ?;`

func (s *Store) DeleteKV(ctx context.Context, slot store.Slot) error {
	if _, err := s.db.ExecContext(ctx, deleteKV, string(slot)); err != nil {
		return errf("storesqlite: delete kv: %w", err)
	}

	return nil
}
