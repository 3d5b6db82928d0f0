package kv

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/lib/pq"
	"github.com/samber/oops"
)

const upsertQuery = `INSERT INTO client_state (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// PostgresStore implements Store on the client_state table.
type PostgresStore struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresStore creates a PostgresStore on an initialized database.
// The schema must already exist (see db.InitPostgres).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Get returns the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("STORE_READ_FAILED").With("key", key).Wrap(err)
	}
	return value, true, nil
}

// Set upserts a single key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.DB.ExecContext(ctx, upsertQuery, key, value); err != nil {
		return oops.Code("STORE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// SetMany upserts all pairs within one transaction, in key order.
func (s *PostgresStore) SetMany(ctx context.Context, pairs map[string]string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("STORE_WRITE_FAILED").Wrapf(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertQuery, k, pairs[k]); err != nil {
			return oops.Code("STORE_WRITE_FAILED").With("key", k).Wrap(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return oops.Code("STORE_WRITE_FAILED").Wrapf(err, "commit")
	}
	return nil
}

// Delete removes keys in one statement.
func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM client_state WHERE key = ANY($1)`,
		pq.Array(keys),
	); err != nil {
		return oops.Code("STORE_DELETE_FAILED").With("keys", keys).Wrap(err)
	}
	return nil
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
