package handler

import (
	"context"
	"time"

	"concoro/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	backend func() string
}

// NewHealthHandler reports database reachability; cacheBackend names the
// active cache store and may be nil.
func NewHealthHandler(db Pinger, cacheBackend func() string) *HealthHandler {
	return &HealthHandler{db: db, backend: cacheBackend}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	data := map[string]string{"database": "unknown", "cache": "none"}
	if h.backend != nil {
		data["cache"] = h.backend()
	}

	if h.db == nil {
		return response.Success(c, fiber.StatusOK, response.MessageOK, data)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		data["database"] = "down"
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data)
	}
	data["database"] = "up"
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
