package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/allisson/concierge/internal/database"
	apperrors "github.com/allisson/concierge/internal/errors"
	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
)

// MySQLExternalErrorRepository stores external errors in MySQL. UUIDs are stored as BINARY(16).
type MySQLExternalErrorRepository struct {
	db *sql.DB
}

// Create appends an external error.
func (m *MySQLExternalErrorRepository) Create(
	ctx context.Context,
	externalError *externalErrorDomain.ExternalError,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := externalError.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal external error id")
	}

	query := `INSERT INTO external_errors (id, operation, supplier, code, message, context, happened_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLExternalErrorRepository) List(
	ctx context.Context,
	filter externalErrorDomain.Filter,
	offset, limit int,
) ([]*externalErrorDomain.ExternalError, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if filter.Supplier != "" {
		conditions = append(conditions, "supplier = ?")
		args = append(args, filter.Supplier)
	}
	if filter.Code != "" {
		conditions = append(conditions, "code = ?")
		args = append(args, filter.Code)
	}

	query := `SELECT id, operation, supplier, code, message, COALESCE(context, ''), happened_at
			  FROM external_errors`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY happened_at DESC LIMIT ? OFFSET ?"
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
		var id []byte
		if err := rows.Scan(
			&id,
			&e.Operation,
			&e.Supplier,
			&e.Code,
			&e.Message,
			&e.Context,
			&e.HappenedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan external error")
		}
		if err := e.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal external error id")
		}
		externalErrors = append(externalErrors, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate external errors")
	}

	return externalErrors, nil
}

// NewMySQLExternalErrorRepository creates a new MySQL external error repository.
func NewMySQLExternalErrorRepository(db *sql.DB) *MySQLExternalErrorRepository {
	return &MySQLExternalErrorRepository{db: db}
}
