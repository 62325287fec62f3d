// Package repository implements cache entry persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/concierge/internal/cache/domain"
	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
)

// PostgreSQLEntryRepository persists cache entries in PostgreSQL.
type PostgreSQLEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLEntryRepository creates a new PostgreSQLEntryRepository.
func NewPostgreSQLEntryRepository(db *sql.DB) *PostgreSQLEntryRepository {
	return &PostgreSQLEntryRepository{db: db}
}

// Get retrieves the entry for (namespace, key).
func (r *PostgreSQLEntryRepository) Get(ctx context.Context, namespace, key string) (*domain.Entry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT namespace, cache_key, value, updated_at FROM cache_entries WHERE namespace = $1 AND cache_key = $2`

	var entry domain.Entry
	err := querier.QueryRowContext(ctx, query, namespace, key).Scan(
		&entry.Namespace,
		&entry.Key,
		&entry.Value,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cache entry")
	}

	return &entry, nil
}

// Upsert creates the entry or overwrites its value and timestamp.
func (r *PostgreSQLEntryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO cache_entries (namespace, cache_key, value, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (namespace, cache_key)
			  DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, entry.Namespace, entry.Key, entry.Value, entry.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert cache entry")
	}
	return nil
}
