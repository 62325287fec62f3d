// Package repository implements ExternalError persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
)

// PostgreSQLExternalErrorRepository stores external errors in the external_errors table.
// The event log is kept in a JSONB column.
type PostgreSQLExternalErrorRepository struct {
	db *sql.DB
}

// Create appends an external error.
func (p *PostgreSQLExternalErrorRepository) Create(
	ctx context.Context,
	externalError *externalErrorDomain.ExternalError,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO external_errors (id, operation, supplier, code, message, context, happened_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		externalError.ID,
		externalError.Operation,
		externalError.Supplier,
		externalError.Code,
		externalError.Message,
		nullableJSON(externalError.Context),
		externalError.HappenedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create external error")
	}
	return nil
}

// List returns external errors newest first, optionally filtered by supplier and code.
func (p *PostgreSQLExternalErrorRepository) List(
	ctx context.Context,
	filter externalErrorDomain.Filter,
	offset, limit int,
) ([]*externalErrorDomain.ExternalError, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if filter.Supplier != "" {
		args = append(args, filter.Supplier)
		conditions = append(conditions, fmt.Sprintf("supplier = $%d", len(args)))
	}
	if filter.Code != "" {
		args = append(args, filter.Code)
		conditions = append(conditions, fmt.Sprintf("code = $%d", len(args)))
	}

	query := `SELECT id, operation, supplier, code, message, COALESCE(context::text, ''), happened_at
			  FROM external_errors`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY happened_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list external errors")
	}
	defer func() {
		_ = rows.Close()
	}()

	externalErrors := make([]*externalErrorDomain.ExternalError, 0)
	for rows.Next() {
		var e externalErrorDomain.ExternalError
		if err := rows.Scan(
			&e.ID,
			&e.Operation,
			&e.Supplier,
			&e.Code,
			&e.Message,
			&e.Context,
			&e.HappenedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan external error")
		}
		externalErrors = append(externalErrors, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate external errors")
	}

	return externalErrors, nil
}

func nullableJSON(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// NewPostgreSQLExternalErrorRepository creates a new PostgreSQL external error repository.
func NewPostgreSQLExternalErrorRepository(db *sql.DB) *PostgreSQLExternalErrorRepository {
	return &PostgreSQLExternalErrorRepository{db: db}
}
