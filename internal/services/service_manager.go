package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/storage"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	DraftTTL time.Duration
	StatsTTL time.Duration
}

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo      repositories.Repository
	Directory repositories.UserDirectory
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Files     storage.FileStore
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	userService       UserService
	draftService      DraftService
	bulkImportService BulkImportService
	assignmentService AssignmentService
	rosterService     RosterService
	quizService       QuizService
	analyticsService  AnalyticsService
	exportService     ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager uses the default cache lifetimes.
func NewDefaultServiceManager(deps Dependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		DraftTTL: cache.DraftCacheConfig.TTL,
		StatsTTL: cache.StatsCacheConfig.TTL,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.Repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.deps.Logger == nil {
		sm.deps.Logger = slog.Default()
	}
	if sm.deps.Validator == nil {
		sm.deps.Validator = validator.New()
	}
	if sm.deps.Cache == nil {
		sm.deps.Cache = cache.NewCacheManager(nil)
	}

	sm.deps.Logger.Info("Initializing service manager")
	sm.initializeServices()

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	d := sm.deps

	sm.userService = NewUserService(d.Repo, d.Directory, d.Cache, d.Publisher, d.Logger)
	sm.draftService = NewDraftService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator, sm.config.DraftTTL)
	sm.bulkImportService = NewBulkImportService(d.Repo, sm.draftService, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.assignmentService = NewAssignmentService(d.Repo, d.Files, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.rosterService = NewRosterService(d.Repo, d.Publisher, d.Logger)
	sm.quizService = NewQuizService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator)
	sm.analyticsService = NewAnalyticsService(d.Repo, d.Cache, d.Logger, sm.config.StatsTTL)
	sm.exportService = NewExportService(sm.analyticsService, d.Logger)
}

func (sm *serviceManager) ready() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.userService
}

func (sm *serviceManager) Draft() DraftService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.draftService
}

func (sm *serviceManager) BulkImport() BulkImportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.bulkImportService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.assignmentService
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.rosterService
}

func (sm *serviceManager) Quiz() QuizService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.quizService
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.analyticsService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.exportService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. Connections are owned by main.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	sm.deps.Logger.Info("Shutting down service manager")
	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	}
	return nil
}
