package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"

	"linklens/internal/delivery/http/middleware"
	"linklens/internal/usecase"
)

type Handler struct {
	hub      *Hub
	sessions usecase.SessionUsecase
	logger   *log.Logger
}

func NewHandler(hub *Hub, sessions usecase.SessionUsecase, logger *log.Logger) *Handler {
	return &Handler{hub: hub, sessions: sessions, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleCapturesWS upgrades an authenticated request and subscribes the
// connection to the caller's own capture events.
func (h *Handler) HandleCapturesWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	p, err := h.sessions.Bootstrap(c.Context(), claims)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	topic := strings.ToLower(p.ID.String())

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("WS upgrade error | error=%v", err)
			}
			return
		}

		client := NewClient(h.hub, conn, topic)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
