package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
	syncDomain "github.com/allisson/concierge/internal/sync/domain"
	"github.com/allisson/concierge/internal/txcontext"
)

// memoryWorkers is a WorkerRepository whose conditional updates are serialized by a mutex,
// mirroring the row-level atomicity of the SQL implementations.
type memoryWorkers struct {
	mu      sync.Mutex
	workers map[uuid.UUID]syncDomain.Worker
	// getErrs and startErrs are returned, one per call, before the store is consulted.
	getErrs   []error
	startErrs []error
}

func (m *memoryWorkers) popErr(errs *[]error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func newMemoryWorkers() *memoryWorkers {
	return &memoryWorkers{workers: make(map[uuid.UUID]syncDomain.Worker)}
}

func (m *memoryWorkers) Create(_ context.Context, worker *syncDomain.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.Supplier == worker.Supplier && w.HostID == worker.HostID && w.Type == worker.Type {
			return syncDomain.ErrWorkerAlreadyExists
		}
	}
	m.workers[worker.ID] = *worker
	return nil
}

func (m *memoryWorkers) Get(_ context.Context, id uuid.UUID) (*syncDomain.Worker, error) {
	if err := m.popErr(&m.getErrs); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, syncDomain.ErrWorkerNotFound
	}
	return &w, nil
}

func (m *memoryWorkers) GetByIdentity(
	_ context.Context,
	supplier, hostID string,
	workerType syncDomain.WorkerType,
) (*syncDomain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.Supplier == supplier && w.HostID == hostID && w.Type == workerType {
			return &w, nil
		}
	}
	return nil, syncDomain.ErrWorkerNotFound
}

func (m *memoryWorkers) ListByHost(_ context.Context, supplier, hostID string) ([]*syncDomain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var workers []*syncDomain.Worker
	for _, w := range m.workers {
		if w.Supplier == supplier && w.HostID == hostID {
			workers = append(workers, &w)
		}
	}
	return workers, nil
}

func (m *memoryWorkers) List(_ context.Context, offset, limit int) ([]*syncDomain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	workers := make([]*syncDomain.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, &w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID.String() < workers[j].ID.String() })
	if offset >= len(workers) {
		return []*syncDomain.Worker{}, nil
	}
	return workers[offset:min(offset+limit, len(workers))], nil
}

func (m *memoryWorkers) transition(id uuid.UUID, to syncDomain.WorkerStatus, allowed func(syncDomain.WorkerStatus) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok || !allowed(w.Status) {
		return false
	}
	w.Status = to
	m.workers[id] = w
	return true
}

func (m *memoryWorkers) Enqueue(_ context.Context, id uuid.UUID) (bool, error) {
	return m.transition(id, syncDomain.WorkerStatusQueued, syncDomain.WorkerStatus.Enqueueable), nil
}

func (m *memoryWorkers) Start(_ context.Context, id uuid.UUID) (bool, error) {
	if err := m.popErr(&m.startErrs); err != nil {
		return false, err
	}
	return m.transition(id, syncDomain.WorkerStatusRunning, isQueued), nil
}

func (m *memoryWorkers) Release(_ context.Context, id uuid.UUID) (bool, error) {
	return m.transition(id, syncDomain.WorkerStatusFailed, isQueued), nil
}

func isQueued(s syncDomain.WorkerStatus) bool {
	return s == syncDomain.WorkerStatusQueued
}

func (m *memoryWorkers) Finish(
	_ context.Context,
	id uuid.UUID,
	status syncDomain.WorkerStatus,
	nextRunAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.workers[id]
	w.Status = status
	w.NextRunAt = nextRunAt
	m.workers[id] = w
	return nil
}

func (m *memoryWorkers) ListDue(_ context.Context, now time.Time, limit int) ([]*syncDomain.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*syncDomain.Worker
	for _, w := range m.workers {
		if !w.NextRunAt.After(now) && w.Status.Enqueueable() && len(due) < limit {
			due = append(due, &w)
		}
	}
	return due, nil
}

func (m *memoryWorkers) status(id uuid.UUID) syncDomain.WorkerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workers[id].Status
}

type memoryProcesses struct {
	mu        sync.Mutex
	processes map[uuid.UUID]syncDomain.Process
	createErr error
}

func newMemoryProcesses() *memoryProcesses {
	return &memoryProcesses{processes: make(map[uuid.UUID]syncDomain.Process)}
}

func (m *memoryProcesses) Create(_ context.Context, process *syncDomain.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.processes[process.ID] = *process
	return nil
}

func (m *memoryProcesses) Finish(_ context.Context, process *syncDomain.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.processes[process.ID]; ok {
		m.processes[process.ID] = *process
	}
	return nil
}

func (m *memoryProcesses) List(
	_ context.Context,
	filter syncDomain.ProcessFilter,
	_, _ int,
) ([]*syncDomain.Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var processes []*syncDomain.Process
	for _, p := range m.processes {
		if filter.WorkerID != uuid.Nil && p.WorkerID != filter.WorkerID {
			continue
		}
		processes = append(processes, &p)
	}
	return processes, nil
}

func (m *memoryProcesses) get(id uuid.UUID) (syncDomain.Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[id]
	return p, ok
}

// recordingRecorder keeps recorded errors with the events of the context they were recorded in.
type recordingRecorder struct {
	mu      sync.Mutex
	records []*externalErrorDomain.ExternalError
	events  [][]txcontext.Event
}

func (r *recordingRecorder) Record(ctx context.Context, e *externalErrorDomain.ExternalError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, e)
	r.events = append(r.events, txcontext.FromContext(ctx).Events())
}

func (r *recordingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
