package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	syncUseCase "github.com/allisson/concierge/internal/sync/usecase"
)

// RunResync queues the worker and runs it in the foreground, printing the finished process.
// A worker that is already queued or running is reported as an error.
func RunResync(
	ctx context.Context,
	useCase syncUseCase.SyncUseCase,
	logger *slog.Logger,
	writer io.Writer,
	id string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	workerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid worker id %q: %w", id, err)
	}

	result, err := useCase.Enqueue(ctx, workerID)
	if err != nil {
		return fmt.Errorf("failed to enqueue sync worker: %w", err)
	}
	if !result.Queued {
		return fmt.Errorf("sync worker %s not queued: %s", workerID, result.Reason)
	}

	logger.Info("sync worker queued", slog.String("worker_id", workerID.String()))

	process, err := useCase.Run(ctx, workerID)
	if err != nil {
		return fmt.Errorf("failed to run sync worker: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, processOutput(process))
	}
	return writeProcessText(writer, process)
}

func processOutput(process *syncDomain.Process) map[string]any {
	return map[string]any{
		"id":         process.ID.String(),
		"worker_id":  process.WorkerID.String(),
		"supplier":   process.Supplier,
		"host_id":    process.HostID,
		"type":       string(process.Type),
		"status":     string(process.Status),
		"successful": process.Successful,
		"code":       process.Code,
		"message":    process.Message,
		"stats":      process.Stats,
	}
}

func writeProcessText(w io.Writer, process *syncDomain.Process) error {
	_, err := fmt.Fprintf(
		w,
		"Sync %s for %s host %s finished with status %s\n"+
			"Properties: %d, availabilities: %d, skipped: %d\n",
		process.Type,
		process.Supplier,
		process.HostID,
		process.Status,
		process.Stats.Properties,
		process.Stats.Availabilities,
		process.Stats.Skipped,
	)
	if err != nil || process.Successful {
		return err
	}
	_, err = fmt.Fprintf(w, "Error: %s (%s)\n", process.Message, process.Code)
	return err
}
