package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"linklens/internal/delivery/http/dto"
	"linklens/internal/delivery/http/middleware"
	"linklens/internal/pkg/response"
	"linklens/internal/usecase"
)

type CaptureHandler struct {
	captures usecase.CaptureUsecase
	exports  usecase.ExportUsecase
	sessions usecase.SessionUsecase
}

type submitCaptureRequest struct {
	URL string `json:"url"`
}

func NewCaptureHandler(captures usecase.CaptureUsecase, exports usecase.ExportUsecase, sessions usecase.SessionUsecase) *CaptureHandler {
	return &CaptureHandler{captures: captures, exports: exports, sessions: sessions}
}

func (h *CaptureHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Submit)
	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Get("/:id/export", h.Export)
}

func (h *CaptureHandler) Submit(c fiber.Ctx) error {
	ownerID, err := h.ownerID(c)
	if err != nil {
		return err
	}

	var req submitCaptureRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	created, err := h.captures.Submit(c.Context(), ownerID, req.URL)
	if err != nil {
		return mapCaptureError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "capture queued", dto.NewCaptureResponse(created))
}

func (h *CaptureHandler) List(c fiber.Ctx) error {
	ownerID, err := h.ownerID(c)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	items, err := h.captures.List(c.Context(), ownerID, limit, offset)
	if err != nil {
		return mapCaptureError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCaptureListResponse(items))
}

func (h *CaptureHandler) Get(c fiber.Ctx) error {
	ownerID, err := h.ownerID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid capture id", nil, err)
	}

	detail, err := h.captures.Get(c.Context(), ownerID, id)
	if err != nil {
		return mapCaptureError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCaptureDetailResponse(detail))
}

func (h *CaptureHandler) Export(c fiber.Ctx) error {
	ownerID, err := h.ownerID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid capture id", nil, err)
	}

	format := c.Query("format", usecase.ExportFormatJSON)
	res, err := h.exports.Export(c.Context(), ownerID, id, format)
	if err != nil {
		return mapCaptureError(err)
	}

	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.Filename+`"`)
	return c.Send(res.Body)
}

// ownerID resolves the authenticated subject to its profile; the session
// usecase caches this, so the extra hop is cheap after bootstrap.
func (h *CaptureHandler) ownerID(c fiber.Ctx) (uuid.UUID, error) {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	p, err := h.sessions.Bootstrap(c.Context(), claims)
	if err != nil {
		return uuid.Nil, mapSessionError(err)
	}
	return p.ID, nil
}

func mapCaptureError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request", nil, err)
	case errors.Is(err, usecase.ErrUnsupportedTarget):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "URL must be a LinkedIn post or profile", nil, err)
	case errors.Is(err, usecase.ErrDuplicateCapture):
		return middleware.NewAppError(fiber.StatusConflict, "Capture already queued for this URL", nil, err)
	case errors.Is(err, usecase.ErrCaptureNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Capture not found", nil, err)
	case errors.Is(err, usecase.ErrUnsupportedFormat):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unsupported export format", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}

func queryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
