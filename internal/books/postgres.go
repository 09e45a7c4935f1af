package books

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the learned_aliases table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS learned_aliases (
    alias      TEXT PRIMARY KEY,
    canonical  TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [LearnedStore] backed by a PostgreSQL database. Use it
// when several operator machines share one set of taught corrections.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ LearnedStore = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] over the given connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] to
// ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("books: migrate learned_aliases: %w", err)
	}
	return nil
}

// Load implements [LearnedStore.Load].
func (s *PostgresStore) Load(ctx context.Context) ([]Mapping, error) {
	const query = `
		SELECT alias, canonical, created_at
		FROM learned_aliases
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("books: load learned_aliases: %w", err)
	}
	defer rows.Close()

	var mappings []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Alias, &m.Canonical, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("books: scan learned alias: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("books: load learned_aliases: %w", err)
	}
	return mappings, nil
}

// Save implements [LearnedStore.Save] as an upsert: teaching the same alias
// again replaces the previous canonical target.
func (s *PostgresStore) Save(ctx context.Context, m Mapping) error {
	const query = `
		INSERT INTO learned_aliases (alias, canonical, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (alias) DO UPDATE SET
			canonical = EXCLUDED.canonical,
			created_at = EXCLUDED.created_at`

	if _, err := s.db.Exec(ctx, query, m.Alias, m.Canonical, m.CreatedAt); err != nil {
		return fmt.Errorf("books: save learned alias %q: %w", m.Alias, err)
	}
	return nil
}
