package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	cacheRepository "github.com/allisson/concierge/internal/cache/repository"
	cacheUsecase "github.com/allisson/concierge/internal/cache/usecase"
	"github.com/allisson/concierge/internal/credentials"
	"github.com/allisson/concierge/internal/database"
	externalErrorHTTP "github.com/allisson/concierge/internal/externalerror/http"
	externalErrorRepository "github.com/allisson/concierge/internal/externalerror/repository"
	externalErrorUseCase "github.com/allisson/concierge/internal/externalerror/usecase"
	"github.com/allisson/concierge/internal/supplier/adapters/kigo"
	"github.com/allisson/concierge/internal/supplier/adapters/saw"
	"github.com/allisson/concierge/internal/supplier/adapters/waytostay"
	supplierDomain "github.com/allisson/concierge/internal/supplier/domain"
	supplierHTTP "github.com/allisson/concierge/internal/supplier/http"
	"github.com/allisson/concierge/internal/supplier/service"
	supplierUseCase "github.com/allisson/concierge/internal/supplier/usecase"
)

// credentialDeclarations lists the fields each supplier adapter needs.
var credentialDeclarations = map[string][]string{
	kigo.Name:      kigo.RequiredFields,
	saw.Name:       saw.RequiredFields,
	waytostay.Name: waytostay.RequiredFields,
}

// Credentials returns the supplier credentials loaded from CREDENTIALS_FILE.
func (c *Container) Credentials(ctx context.Context) (*credentials.Registry, error) {
	var err error
	c.credentialsInit.Do(func() {
		c.credentials, err = c.initCredentials(ctx)
		if err != nil {
			c.initErrors["credentials"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentials"]; exists {
		return nil, storedErr
	}
	return c.credentials, nil
}

// CacheRepository returns the cache entry repository based on database driver.
func (c *Container) CacheRepository() (cacheUsecase.EntryRepository, error) {
	var err error
	c.cacheRepositoryInit.Do(func() {
		c.cacheRepository, err = c.initCacheRepository()
		if err != nil {
			c.initErrors["cacheRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cacheRepository"]; exists {
		return nil, storedErr
	}
	return c.cacheRepository, nil
}

// SupplierRegistry returns the table of supplier clients that have credentials.
func (c *Container) SupplierRegistry(ctx context.Context) (*supplierUseCase.Registry, error) {
	var err error
	c.supplierRegistryInit.Do(func() {
		c.supplierRegistry, err = c.initSupplierRegistry(ctx)
		if err != nil {
			c.initErrors["supplierRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["supplierRegistry"]; exists {
		return nil, storedErr
	}
	return c.supplierRegistry, nil
}

// ExternalErrorRepository returns the external error repository based on database driver.
func (c *Container) ExternalErrorRepository() (externalErrorUseCase.ExternalErrorRepository, error) {
	var err error
	c.externalErrorRepoInit.Do(func() {
		c.externalErrorRepo, err = c.initExternalErrorRepository()
		if err != nil {
			c.initErrors["externalErrorRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["externalErrorRepo"]; exists {
		return nil, storedErr
	}
	return c.externalErrorRepo, nil
}

// ExternalErrorUseCase returns the external error use case.
func (c *Container) ExternalErrorUseCase() (externalErrorUseCase.ExternalErrorUseCase, error) {
	var err error
	c.externalErrorUseCaseInit.Do(func() {
		c.externalErrorUseCase, err = c.initExternalErrorUseCase()
		if err != nil {
			c.initErrors["externalErrorUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["externalErrorUseCase"]; exists {
		return nil, storedErr
	}
	return c.externalErrorUseCase, nil
}

// BookingUseCase returns the live quote/book/cancel use case.
func (c *Container) BookingUseCase() (supplierUseCase.BookingUseCase, error) {
	var err error
	c.bookingUseCaseInit.Do(func() {
		c.bookingUseCase, err = c.initBookingUseCase()
		if err != nil {
			c.initErrors["bookingUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bookingUseCase"]; exists {
		return nil, storedErr
	}
	return c.bookingUseCase, nil
}

// BookingHandler returns the HTTP handler for supplier operations.
func (c *Container) BookingHandler() (*supplierHTTP.BookingHandler, error) {
	useCase, err := c.BookingUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get booking use case for booking handler: %w", err)
	}
	return supplierHTTP.NewBookingHandler(useCase, c.Logger()), nil
}

// ExternalErrorHandler returns the HTTP handler for the external error listing.
func (c *Container) ExternalErrorHandler() (*externalErrorHTTP.ExternalErrorHandler, error) {
	useCase, err := c.ExternalErrorUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get external error use case for external error handler: %w", err)
	}
	return externalErrorHTTP.NewExternalErrorHandler(useCase, c.Logger()), nil
}

// initCredentials reads the credentials document and decrypts "enc:" values
// through the configured keeper.
func (c *Container) initCredentials(ctx context.Context) (*credentials.Registry, error) {
	opts := credentials.LoadOptions{
		Environment:  c.config.Environment,
		Declarations: credentialDeclarations,
	}

	if c.config.CredentialsKeeperURI != "" {
		keeper, err := credentials.OpenKeeper(ctx, c.config.CredentialsKeeperURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = keeper.Close()
		}()
		opts.Decrypter = keeper
	}

	registry, err := credentials.LoadFile(ctx, c.config.CredentialsFile, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier credentials: %w", err)
	}
	return registry, nil
}

func (c *Container) initCacheRepository() (cacheUsecase.EntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for cache repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return cacheRepository.NewMySQLEntryRepository(db), nil
	case database.DriverPostgres:
		return cacheRepository.NewPostgreSQLEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.config.DBDriver)
	}
}

// supplierHTTPConfig maps the transport settings onto the supplier client config.
func (c *Container) supplierHTTPConfig() service.HTTPConfig {
	return service.HTTPConfig{
		Timeout:                 c.config.SupplierTimeout,
		RateLimit:               c.config.SupplierRateLimitPerSec,
		RateBurst:               c.config.SupplierRateBurst,
		BreakerEnabled:          c.config.BreakerEnabled,
		BreakerFailureThreshold: toUint32(c.config.BreakerFailureThreshold),
		BreakerMinRequests:      toUint32(c.config.BreakerMinRequests),
		BreakerRecoveryTime:     c.config.BreakerRecoveryTime,
		BreakerSamplingDuration: c.config.BreakerSamplingDuration,
		BreakerHalfOpenMax:      toUint32(c.config.BreakerHalfOpenMaxRequests),
	}
}

func toUint32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// initSupplierRegistry builds one client per supplier with credentials. Suppliers
// absent from the credentials document are left out of the table.
func (c *Container) initSupplierRegistry(ctx context.Context) (*supplierUseCase.Registry, error) {
	logger := c.Logger()

	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials for supplier registry: %w", err)
	}

	httpConfig := c.supplierHTTPConfig()
	var clients []supplierDomain.Client

	if creds.Has(kigo.Name) {
		clients = append(clients, kigo.New(c.config.KigoBaseURL, creds.For(kigo.Name), httpConfig, logger))
	}

	if creds.Has(saw.Name) {
		clients = append(clients, saw.New(c.config.SAWBaseURL, creds.For(saw.Name), httpConfig, logger))
	}

	if creds.Has(waytostay.Name) {
		cacheRepo, err := c.CacheRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache repository for waytostay: %w", err)
		}
		tokens := cacheUsecase.NewCache(waytostay.Name, cacheRepo, logger)
		clients = append(clients, waytostay.New(c.config.WaytostayBaseURL, creds.For(waytostay.Name), httpConfig, tokens, logger))
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for supplier registry: %w", err)
		}
		for i, client := range clients {
			clients[i] = supplierUseCase.NewClientWithMetrics(client, businessMetrics)
		}
	}

	registry := supplierUseCase.NewRegistry(clients...)
	logger.Info("supplier registry ready", slog.Any("suppliers", registry.Names()))

	return registry, nil
}

func (c *Container) initExternalErrorRepository() (externalErrorUseCase.ExternalErrorRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for external error repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return externalErrorRepository.NewMySQLExternalErrorRepository(db), nil
	case database.DriverPostgres:
		return externalErrorRepository.NewPostgreSQLExternalErrorRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.config.DBDriver)
	}
}

func (c *Container) initExternalErrorUseCase() (externalErrorUseCase.ExternalErrorUseCase, error) {
	repo, err := c.ExternalErrorRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get external error repository for external error use case: %w", err)
	}
	return externalErrorUseCase.NewExternalErrorUseCase(repo, c.Logger()), nil
}

func (c *Container) initBookingUseCase() (supplierUseCase.BookingUseCase, error) {
	registry, err := c.SupplierRegistry(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier registry for booking use case: %w", err)
	}

	recorder, err := c.ExternalErrorUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get external error use case for booking use case: %w", err)
	}

	return supplierUseCase.NewBookingUseCase(registry, recorder, c.Logger()), nil
}
