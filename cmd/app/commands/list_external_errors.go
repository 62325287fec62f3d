package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	externalErrorUseCase "github.com/allisson/concierge/internal/externalerror/usecase"
)

const maxListLimit = 1000

// RunListExternalErrors prints the most recent supplier failures, optionally filtered
// by supplier and error code.
func RunListExternalErrors(
	ctx context.Context,
	useCase externalErrorUseCase.ExternalErrorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	supplier, code string,
	limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if limit < 1 || limit > maxListLimit {
		return fmt.Errorf("limit must be between 1 and %d, got: %d", maxListLimit, limit)
	}

	filter := externalErrorDomain.Filter{Supplier: supplier, Code: code}
	externalErrors, err := useCase.List(ctx, filter, 0, limit)
	if err != nil {
		return fmt.Errorf("failed to list external errors: %w", err)
	}

	logger.Debug("external errors listed", slog.Int("count", len(externalErrors)))

	if format == "json" {
		items := make([]map[string]any, 0, len(externalErrors))
		for _, externalError := range externalErrors {
			items = append(items, map[string]any{
				"id":          externalError.ID.String(),
				"operation":   externalError.Operation,
				"supplier":    externalError.Supplier,
				"code":        externalError.Code,
				"message":     externalError.Message,
				"happened_at": externalError.HappenedAt,
			})
		}
		return writeJSON(writer, map[string]any{"count": len(items), "data": items})
	}

	if len(externalErrors) == 0 {
		_, err := fmt.Fprintln(writer, "No external errors found")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "HAPPENED AT\tSUPPLIER\tOPERATION\tCODE\tMESSAGE")
	for _, externalError := range externalErrors {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			externalError.HappenedAt.Format(time.RFC3339),
			externalError.Supplier,
			externalError.Operation,
			externalError.Code,
			externalError.Message,
		)
	}
	return tw.Flush()
}
