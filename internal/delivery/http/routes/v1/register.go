package v1

import (
	"concoro/internal/delivery/http/handler"
	"concoro/internal/delivery/http/middleware"
	"concoro/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Handlers groups every handler mounted under /api/v1. Nil handlers are skipped.
type Handlers struct {
	Auth          *handler.AuthHandler
	Concorsi      *handler.ConcorsiHandler
	Enti          *handler.EntiHandler
	Regioni       *handler.RegioniHandler
	Articoli      *handler.ArticoliHandler
	SEO           *handler.SEOHandler
	Favicons      *handler.FaviconHandler
	Profile       *handler.ProfileHandler
	Saved         *handler.SavedHandler
	Notifications *handler.NotificationHandler
	WS            *ws.Handler
}

func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	RegisterCatalog(r, h)

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}

	if authMw == nil {
		return
	}

	if h.WS != nil {
		r.Get("/ws/notifications", authMw.QueryTokenMiddleware(), h.WS.HandleNotificationsWS)
	}

	protected := r.Group("/users", authMw.Middleware())
	RegisterUsers(protected, h)
}
