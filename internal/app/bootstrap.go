package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"concoro/internal/config"
	"concoro/internal/delivery/http/handler"
	"concoro/internal/delivery/http/middleware"
	"concoro/internal/delivery/http/routes"
	v1 "concoro/internal/delivery/http/routes/v1"
	"concoro/internal/scheduler"
	"concoro/internal/seo"
	"concoro/internal/sitemap"
	"concoro/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
	Scheduler *scheduler.Scheduler
}

// New builds the fiber app with global middleware and the given routes.
func New(cfg config.Config, registry *routes.Registry, logger *log.Logger) *App {
	f := fiber.New(fiber.Config{
		AppName:      cfg.App.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	registerGlobalMiddleware(f, logger)
	if registry != nil {
		registry.Register(f)
	}

	return &App{Fiber: f}
}

// Bootstrap wires the container, applies migrations, starts background
// loops and returns the HTTP app with a cleanup func.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	if err := c.Migrate(migCtx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	c.Cache.Start(bgCtx)
	go c.Hub.Run(bgCtx)

	sched := scheduler.New(c.Notifier, cfg.Notifications.Cron, c.Location, c.Logger).WithLocker(c.Cache)
	if err := sched.Start(bgCtx); err != nil {
		bgCancel()
		_ = c.Close()
		return nil, nil, err
	}

	app := New(cfg, NewRegistry(c), c.Logger)
	app.Container = c
	app.Scheduler = sched

	cleanup := func() error {
		sched.Stop()
		bgCancel()
		return c.Close()
	}
	return app, cleanup, nil
}

// NewRegistry builds every HTTP handler on top of the container.
func NewRegistry(c *Container) *routes.Registry {
	site := c.Config.App.SiteBaseURL
	present := handler.NewPresenter(site, c.Location)

	concorsi := handler.NewConcorsiHandler(c.ConcorsoUC, c.ArticoloUC, present)
	gen := sitemap.NewGenerator(site, c.Concorsi, c.Articoli, c.ConcorsoUC, c.Cache, c.Logger)

	handlers := v1.Handlers{
		Auth:          handler.NewAuthHandler(c.AuthUC),
		Concorsi:      concorsi,
		Enti:          handler.NewEntiHandler(concorsi),
		Regioni:       handler.NewRegioniHandler(concorsi),
		Articoli:      handler.NewArticoliHandler(c.ArticoloUC, present),
		SEO:           handler.NewSEOHandler(c.ConcorsoUC, c.ArticoloUC, seo.NewBuilder(site, c.Location), gen, site),
		Favicons:      handler.NewFaviconHandler(c.FaviconUC),
		Profile:       handler.NewProfileHandler(c.ProfileUC, present),
		Saved:         handler.NewSavedHandler(c.SavedUC, present),
		Notifications: handler.NewNotificationHandler(c.NotificationUC, present),
		WS:            ws.NewHandler(c.Hub, c.Logger),
	}

	return routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Cache.Backend),
		handlers,
		middleware.NewAuthMiddleware(c.JWT),
	)
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(errMw.Middleware())

	accessMw := middleware.NewAccessLogMiddleware(logger)
	app.Use(accessMw.Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
