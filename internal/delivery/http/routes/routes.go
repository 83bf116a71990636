package routes

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"linklens/internal/config"
	"linklens/internal/database"
	"linklens/internal/delivery/http/handler"
	"linklens/internal/infrastructure/cache"
	wshub "linklens/internal/ws"
)

type Registry struct {
	cfg    config.Config
	db     database.DB
	cache  *cache.Redis
	hub    *wshub.Hub
	logger *log.Logger

	health *handler.HealthHandler
}

func NewRegistry(cfg config.Config, db database.DB, cacheSvc *cache.Redis, hub *wshub.Hub, logger *log.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		db:     db,
		cache:  cacheSvc,
		hub:    hub,
		logger: logger,
		health: handler.NewHealthHandler(db),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	app.Get("/health", r.health.Handle)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.cfg, r.db, r.cache, r.hub, r.logger)
}
