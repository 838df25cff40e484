package routes

import (
	"concoro/internal/delivery/http/handler"
	"concoro/internal/delivery/http/middleware"
	v1 "concoro/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health   *handler.HealthHandler
	seo      *handler.SEOHandler
	handlers v1.Handlers
	auth     *middleware.AuthMiddleware
}

func NewRegistry(health *handler.HealthHandler, handlers v1.Handlers, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{health: health, seo: handlers.SEO, handlers: handlers, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerCrawler(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerCrawler(app *fiber.App) {
	if r.seo != nil {
		r.seo.RegisterRootRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.handlers, r.auth)
}
