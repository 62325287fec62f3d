package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/concierge/internal/cache/domain"
	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
)

// MySQLEntryRepository persists cache entries in MySQL.
type MySQLEntryRepository struct {
	db *sql.DB
}

// NewMySQLEntryRepository creates a new MySQLEntryRepository.
func NewMySQLEntryRepository(db *sql.DB) *MySQLEntryRepository {
	return &MySQLEntryRepository{db: db}
}

// Get retrieves the entry for (namespace, key).
func (r *MySQLEntryRepository) Get(ctx context.Context, namespace, key string) (*domain.Entry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT namespace, cache_key, value, updated_at FROM cache_entries WHERE namespace = ? AND cache_key = ?`

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
func (r *MySQLEntryRepository) Upsert(ctx context.Context, entry *domain.Entry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO cache_entries (namespace, cache_key, value, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, entry.Namespace, entry.Key, entry.Value, entry.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert cache entry")
	}
	return nil
}
