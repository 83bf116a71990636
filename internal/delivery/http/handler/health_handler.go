package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"linklens/internal/database"
	"linklens/internal/pkg/response"
)

type HealthHandler struct {
	db database.DB
}

func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Handle(c fiber.Ctx) error {
	data := map[string]any{"db": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			data["db"] = "unreachable"
			return response.Error(c, fiber.StatusServiceUnavailable, "degraded", data)
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
