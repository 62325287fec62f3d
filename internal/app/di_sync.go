package app

import (
	"context"
	"fmt"

	"github.com/allisson/concierge/internal/announcer"
	"github.com/allisson/concierge/internal/database"
	syncHTTP "github.com/allisson/concierge/internal/sync/http"
	syncRepository "github.com/allisson/concierge/internal/sync/repository"
	syncUseCase "github.com/allisson/concierge/internal/sync/usecase"
)

// WorkerRepository returns the sync worker repository based on database driver.
func (c *Container) WorkerRepository() (syncUseCase.WorkerRepository, error) {
	var err error
	c.workerRepositoryInit.Do(func() {
		c.workerRepository, err = c.initWorkerRepository()
		if err != nil {
			c.initErrors["workerRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workerRepository"]; exists {
		return nil, storedErr
	}
	return c.workerRepository, nil
}

// ProcessRepository returns the sync process repository based on database driver.
func (c *Container) ProcessRepository() (syncUseCase.ProcessRepository, error) {
	var err error
	c.processRepositoryInit.Do(func() {
		c.processRepository, err = c.initProcessRepository()
		if err != nil {
			c.initErrors["processRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["processRepository"]; exists {
		return nil, storedErr
	}
	return c.processRepository, nil
}

// SyncUseCase returns the sync use case.
func (c *Container) SyncUseCase() (syncUseCase.SyncUseCase, error) {
	var err error
	c.syncUseCaseInit.Do(func() {
		c.syncUseCase, err = c.initSyncUseCase()
		if err != nil {
			c.initErrors["syncUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["syncUseCase"]; exists {
		return nil, storedErr
	}
	return c.syncUseCase, nil
}

// Dispatcher returns the bounded runner for sync workers.
func (c *Container) Dispatcher() (*syncUseCase.Dispatcher, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// Announcer returns the event bus with a sync.<supplier> handler for every
// registered supplier.
func (c *Container) Announcer() (*announcer.Announcer, error) {
	var err error
	c.announcerInit.Do(func() {
		c.announcer, err = c.initAnnouncer()
		if err != nil {
			c.initErrors["announcer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["announcer"]; exists {
		return nil, storedErr
	}
	return c.announcer, nil
}

// Scheduler returns the periodic publisher of due sync workers.
func (c *Container) Scheduler() (*syncUseCase.Scheduler, error) {
	var err error
	c.schedulerInit.Do(func() {
		c.scheduler, err = c.initScheduler()
		if err != nil {
			c.initErrors["scheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduler"]; exists {
		return nil, storedErr
	}
	return c.scheduler, nil
}

// SyncWorkerHandler returns the HTTP handler for sync workers.
func (c *Container) SyncWorkerHandler() (*syncHTTP.SyncWorkerHandler, error) {
	useCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for sync worker handler: %w", err)
	}
	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for sync worker handler: %w", err)
	}
	return syncHTTP.NewSyncWorkerHandler(useCase, dispatcher, c.Logger()), nil
}

// SyncProcessHandler returns the HTTP handler for sync process history.
func (c *Container) SyncProcessHandler() (*syncHTTP.SyncProcessHandler, error) {
	useCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for sync process handler: %w", err)
	}
	return syncHTTP.NewSyncProcessHandler(useCase, c.Logger()), nil
}

// WebhookHandler returns the HTTP handler for inbound supplier webhooks.
func (c *Container) WebhookHandler() (*syncHTTP.WebhookHandler, error) {
	bus, err := c.Announcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get announcer for webhook handler: %w", err)
	}
	return syncHTTP.NewWebhookHandler(bus, c.Logger()), nil
}

func (c *Container) initWorkerRepository() (syncUseCase.WorkerRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for worker repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return syncRepository.NewMySQLWorkerRepository(db), nil
	case database.DriverPostgres:
		return syncRepository.NewPostgreSQLWorkerRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.config.DBDriver)
	}
}

func (c *Container) initProcessRepository() (syncUseCase.ProcessRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for process repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return syncRepository.NewMySQLProcessRepository(db), nil
	case database.DriverPostgres:
		return syncRepository.NewPostgreSQLProcessRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.config.DBDriver)
	}
}

func (c *Container) initSyncUseCase() (syncUseCase.SyncUseCase, error) {
	workerRepo, err := c.WorkerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get worker repository for sync use case: %w", err)
	}

	processRepo, err := c.ProcessRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get process repository for sync use case: %w", err)
	}

	registry, err := c.SupplierRegistry(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier registry for sync use case: %w", err)
	}

	recorder, err := c.ExternalErrorUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get external error use case for sync use case: %w", err)
	}

	baseUseCase := syncUseCase.NewSyncUseCase(
		workerRepo,
		processRepo,
		registry,
		recorder,
		c.config.SyncDefaultInterval,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for sync use case: %w", err)
		}
		return syncUseCase.NewSyncUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initDispatcher() (*syncUseCase.Dispatcher, error) {
	useCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for dispatcher: %w", err)
	}
	return syncUseCase.NewDispatcher(useCase, int64(c.config.SyncMaxConcurrency), c.Logger()), nil
}

func (c *Container) initAnnouncer() (*announcer.Announcer, error) {
	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for announcer: %w", err)
	}

	registry, err := c.SupplierRegistry(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier registry for announcer: %w", err)
	}

	bus := announcer.New(c.Logger())
	dispatcher.Register(bus, registry.Names())
	return bus, nil
}

func (c *Container) initScheduler() (*syncUseCase.Scheduler, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for scheduler: %w", err)
	}

	workerRepo, err := c.WorkerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get worker repository for scheduler: %w", err)
	}

	bus, err := c.Announcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get announcer for scheduler: %w", err)
	}

	schedulerConfig := syncUseCase.SchedulerConfig{
		Interval:  c.config.SyncSchedulerInterval,
		BatchSize: c.config.SyncBatchSize,
	}

	return syncUseCase.NewScheduler(schedulerConfig, txManager, workerRepo, bus, c.Logger()), nil
}
