package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/handlers"
	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
	"github.com/aptakhin/lala-search/internal/services/auth"
	"github.com/aptakhin/lala-search/internal/services/crawler"
	"github.com/aptakhin/lala-search/internal/services/queue"
	"github.com/aptakhin/lala-search/internal/services/search"
	objectstorage "github.com/aptakhin/lala-search/internal/services/storage"
	"github.com/aptakhin/lala-search/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DeploymentMode models.DeploymentMode
	AgentMode      models.AgentMode

	StorageManager interfaces.StorageManager

	// Pipeline services
	Fetcher       interfaces.Fetcher
	ObjectStorage interfaces.ObjectStorage // nil when no object store is configured
	SearchService interfaces.SearchService // nil when no search backend is configured
	Supervisor    *queue.Supervisor        // nil when this agent mode does not crawl

	// Authentication (multi-tenant only)
	SessionService interfaces.SessionService

	// HTTP handlers
	VersionHandler *handlers.VersionHandler
	QueueHandler   *handlers.QueueHandler
	SearchHandler  *handlers.SearchHandler
	AdminHandler   *handlers.AdminHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	deploymentMode, err := models.ParseDeploymentMode(cfg.Deployment.Mode)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:         cfg,
		Logger:         logger,
		DeploymentMode: deploymentMode,
		AgentMode:      models.ParseAgentMode(cfg.Deployment.AgentMode),
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("deployment_mode", app.DeploymentMode.String()).
		Str("agent_mode", app.AgentMode.String()).
		Bool("object_storage", app.ObjectStorage != nil).
		Bool("search", app.SearchService != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase connects to the cluster and ensures every keyspace schema.
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("keyspace", a.Config.Cassandra.Keyspace).
		Msg("Storage layer initialized")
	return nil
}

// initServices initializes the pipeline services in dependency order. Object
// storage and search are optional: the agent starts without either, degrading
// the pipeline stages that need them.
func (a *App) initServices() error {
	if a.Config.StorageConfigured() {
		objects, err := objectstorage.NewService(context.Background(), &a.Config.Storage, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create object storage: %w", err)
		}
		a.ObjectStorage = objects
		a.Logger.Debug().Str("bucket", a.Config.Storage.Bucket).Msg("Object storage initialized")
	} else {
		a.Logger.Warn().Msg("Object storage not configured; crawled bodies cannot be stored")
	}

	if a.Config.SearchConfigured() {
		searchService := search.NewService(a.Config.Search.Host, a.Config.Search.APIKey, a.Config.Search.Index, a.Logger)
		if err := searchService.EnsureIndex(context.Background()); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to ensure search index")
		}
		a.SearchService = searchService
		a.Logger.Debug().Str("index", a.Config.Search.Index).Msg("Search service initialized")
	} else {
		a.Logger.Warn().Msg("Search host not configured; indexing disabled")
	}

	a.Fetcher = crawler.NewFetcher(a.Config.Crawler.UserAgent, a.Config.Crawler.RequestTimeout, a.Logger)

	if a.DeploymentMode.IsMultiTenant() {
		a.SessionService = auth.NewService(a.StorageManager.AuthStorage(), a.Logger)
		a.Logger.Debug().Msg("Session service initialized")
	}

	if a.AgentMode.ShouldProcessQueue() {
		a.Supervisor = queue.NewSupervisor(
			a.StorageManager,
			a.Fetcher,
			a.ObjectStorage,
			a.SearchService,
			a.DeploymentMode,
			a.Config.Cassandra.TenantKeyspaces,
			a.Config.PollInterval(),
			a.Logger,
		)
	}

	return nil
}

func (a *App) initHandlers() {
	resolver := handlers.NewTenantResolver(a.StorageManager, a.SessionService, a.DeploymentMode, a.Logger)

	a.VersionHandler = handlers.NewVersionHandler(a.DeploymentMode)
	a.QueueHandler = handlers.NewQueueHandler(resolver, a.Logger)
	a.SearchHandler = handlers.NewSearchHandler(a.SearchService, resolver, a.Logger)
	a.AdminHandler = handlers.NewAdminHandler(resolver, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// StartSupervisor spawns the per-tenant crawl schedulers. A manager-mode
// agent has no supervisor and this is a no-op.
func (a *App) StartSupervisor(ctx context.Context) error {
	if a.Supervisor == nil {
		return nil
	}
	return a.Supervisor.Start(ctx)
}

// Close shuts down components in reverse initialization order.
func (a *App) Close() error {
	if a.Supervisor != nil {
		a.Supervisor.Stop()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage manager")
			return err
		}
	}
	a.Logger.Debug().Msg("Application closed")
	return nil
}
