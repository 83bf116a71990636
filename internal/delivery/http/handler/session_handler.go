package handler

import (
	"errors"

	"linklens/internal/delivery/http/dto"
	"linklens/internal/delivery/http/middleware"
	"linklens/internal/pkg/response"
	"linklens/internal/usecase"
	"linklens/internal/usecase/provision"

	"github.com/gofiber/fiber/v3"
)

type SessionHandler struct {
	uc usecase.SessionUsecase
}

func NewSessionHandler(uc usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/session", h.Bootstrap)
	r.Get("/profile", h.Profile)
}

// Bootstrap provisions (or fetches) the caller's profile from the verified
// token's subject and claim hints. Called once per session by the dashboard.
func (h *SessionHandler) Bootstrap(c fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	p, err := h.uc.Bootstrap(c.Context(), claims)
	if err != nil {
		return mapSessionError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *SessionHandler) Profile(c fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	p, err := h.uc.Bootstrap(c.Context(), claims)
	if err != nil {
		return mapSessionError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func mapSessionError(err error) error {
	var conflict *provision.IdentityConflictError
	switch {
	case errors.Is(err, provision.ErrInvalidSubject):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.As(err, &conflict):
		return middleware.NewAppError(fiber.StatusConflict, "Identity conflict, retry sign-in", nil, err)
	case errors.Is(err, provision.ErrUsernameExhausted):
		return middleware.NewAppError(fiber.StatusConflict, "Could not allocate a username, retry", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}
