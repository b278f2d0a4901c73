package di

import (
	"github.com/SaicharanT-tech/eventra/internal/handler"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
	"github.com/SaicharanT-tech/eventra/pkg/redis"
)

// Container holds all dependencies for the API server
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo    repository.EventRepository
	VenueRepo    repository.VenueRepository
	ResourceRepo repository.ResourceRepository
	OutboxRepo   repository.OutboxRepository

	// Services
	ConflictDetector service.ConflictDetector
	EventService     service.EventService
	InventoryService service.InventoryService

	// Handlers
	HealthHandler    *handler.HealthHandler
	EventHandler     *handler.EventHandler
	InventoryHandler *handler.InventoryHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB            *database.PostgresDB
	Redis         *redis.Client
	Logger        *logger.Logger
	ServiceConfig *service.EventServiceConfig
}

// NewContainer wires repositories, services and handlers
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.VenueRepo = repository.NewPostgresVenueRepository(pool)
	c.ResourceRepo = repository.NewPostgresResourceRepository(pool)

	// Initialize services
	c.ConflictDetector = service.NewConflictDetector(c.VenueRepo, c.EventRepo)
	c.EventService = service.NewEventService(
		c.EventRepo,
		c.VenueRepo,
		c.ResourceRepo,
		c.ConflictDetector,
		log,
		cfg.ServiceConfig,
	)
	c.InventoryService = service.NewInventoryService(c.VenueRepo, c.ResourceRepo, log)

	// Initialize handlers
	// A nil *redis.Client must stay a nil interface to read "not configured"
	components := map[string]handler.HealthChecker{"database": c.DB, "redis": nil}
	if c.Redis != nil {
		components["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(components)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.InventoryHandler = handler.NewInventoryHandler(c.InventoryService)

	return c
}
