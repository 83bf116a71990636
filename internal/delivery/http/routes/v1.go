package routes

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"linklens/internal/config"
	"linklens/internal/database"
	v1 "linklens/internal/delivery/http/routes/v1"
	"linklens/internal/infrastructure/cache"
	wshub "linklens/internal/ws"
)

func RegisterV1(r fiber.Router, cfg config.Config, db database.DB, cacheSvc *cache.Redis, hub *wshub.Hub, logger *log.Logger) {
	if r == nil {
		return
	}

	v1.Register(r, cfg, db, cacheSvc, hub, logger)
}
