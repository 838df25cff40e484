package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"concoro/internal/config"
	"concoro/internal/database"
	"concoro/internal/database/migration"
	dbpostgres "concoro/internal/database/postgres"
	"concoro/internal/infrastructure/cache"
	"concoro/internal/infrastructure/email"
	"concoro/internal/infrastructure/favicon"
	"concoro/internal/pkg/jwt"
	"concoro/internal/repository"
	"concoro/internal/usecase"
	"concoro/internal/ws"
	"concoro/migrations"
)

// Container owns the long-lived dependencies shared by the server and the
// worker binaries.
type Container struct {
	Config   config.Config
	Logger   *log.Logger
	Location *time.Location
	DB       database.DB
	Cache    *cache.Unified
	JWT      jwt.Service
	Hub      *ws.Hub

	Concorsi      repository.ConcorsoRepository
	Articoli      repository.ArticoloRepository
	Users         *repository.PostgresUserRepository
	Profiles      *repository.PostgresProfileRepository
	Saved         repository.SavedRepository
	Notifications repository.NotificationRepository
	Matches       repository.MatchRepository
	Favicons      repository.FaviconRepository
	JobRuns       repository.JobRunRepository

	ConcorsoUC     *usecase.Concorsi
	ArticoloUC     *usecase.Articoli
	AuthUC         *usecase.Auth
	ProfileUC      *usecase.Profile
	SavedUC        *usecase.Saved
	NotificationUC *usecase.Notifications
	FaviconUC      *usecase.Favicons
	Notifier       *usecase.Notifier
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	loc, err := time.LoadLocation(cfg.Notifications.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Notifications.Timezone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		DB:       db,
		Cache: cache.NewUnified(cache.Options{
			RedisURL:      cfg.Cache.RedisURL,
			DefaultTTL:    cfg.Cache.DefaultTTL,
			SweepInterval: cfg.Cache.SweepInterval,
		}, logger),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
		Hub: ws.NewHub(logger),

		Concorsi:      repository.NewPostgresConcorsoRepository(db),
		Articoli:      repository.NewPostgresArticoloRepository(db),
		Users:         repository.NewPostgresUserRepository(db),
		Profiles:      repository.NewPostgresProfileRepository(db),
		Saved:         repository.NewPostgresSavedRepository(db),
		Notifications: repository.NewPostgresNotificationRepository(db),
		Matches:       repository.NewPostgresMatchRepository(db),
		Favicons:      repository.NewPostgresFaviconRepository(db),
		JobRuns:       repository.NewPostgresJobRunRepository(db),
	}
	c.wireUsecases()

	logger.Printf("[App] Container ready cache=%s tz=%s", c.Cache.Backend(), loc)
	return c, nil
}

func (c *Container) wireUsecases() {
	cfg := c.Config

	c.ConcorsoUC = usecase.NewConcorsoUsecase(c.Concorsi, c.Cache, c.Logger)
	c.ArticoloUC = usecase.NewArticoloUsecase(c.Articoli, c.Concorsi, c.Cache, c.Logger)
	c.AuthUC = usecase.NewAuthUsecase(c.Users, c.Profiles, c.JWT)
	c.ProfileUC = usecase.NewProfileUsecase(c.Users, c.Profiles, c.Matches, c.Cache, c.Logger)
	c.SavedUC = usecase.NewSavedUsecase(c.Saved, c.Concorsi, c.Logger)
	c.NotificationUC = usecase.NewNotificationUsecase(c.Notifications, c.Matches, c.Concorsi, c.Cache, c.Logger)
	c.FaviconUC = usecase.NewFaviconUsecase(
		c.Favicons,
		favicon.NewResolver(c.Logger),
		c.Cache,
		cfg.Favicon.TTL,
		cfg.Favicon.Workers,
		c.Logger,
	)
	c.Notifier = usecase.NewNotifier(usecase.NotifierDeps{
		Saved:         c.Saved,
		Concorsi:      c.Concorsi,
		Profiles:      c.Profiles,
		Notifications: c.Notifications,
		Matches:       c.Matches,
		JobRuns:       c.JobRuns,
		Sender:        email.NewSender(cfg.Brevo, c.Logger),
		Pusher:        c.Hub,
		Cache:         c.Cache,
	}, usecase.NotifierConfig{
		DeadlineThresholds: cfg.Notifications.DeadlineThresholds,
		MatchMinScore:      cfg.Notifications.MatchMinScore,
		Location:           c.Location,
		SiteBaseURL:        cfg.App.SiteBaseURL,
	}, c.Logger)
}

// Migrate applies the embedded schema files.
func (c *Container) Migrate(ctx context.Context) error {
	r := migration.Runner{FS: migrations.FS, Dir: "."}
	return r.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil && c.Logger != nil {
			c.Logger.Printf("[App] Cache close error: %v", err)
		}
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
