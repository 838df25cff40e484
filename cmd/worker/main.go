package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concoro/internal/app"
	"concoro/internal/config"
	"concoro/internal/database/seeder"
	"concoro/internal/domain/concorso"
	"concoro/internal/pkg/urlcanon"
	"concoro/internal/repository"
)

func main() {
	task := flag.String("task", "", "deadlines | matches | favicons | seed")
	timeout := flag.Duration("timeout", 10*time.Minute, "maximum run time")
	migrate := flag.Bool("migrate", false, "apply migrations before running")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrate {
		if err := c.Migrate(ctx); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	now := time.Now()
	switch *task {
	case "deadlines":
		rep, err := c.Notifier.RunDeadlineReminders(ctx, now)
		if err != nil {
			log.Fatalf("deadline reminders failed: %v", err)
		}
		log.Printf("deadline reminders scanned=%d created=%d skipped=%d emails_sent=%d emails_failed=%d",
			rep.Scanned, rep.Created, rep.Skipped, rep.EmailsSent, rep.EmailsFailed)

	case "matches":
		rep, err := c.Notifier.RunMatchNotifications(ctx, now)
		if err != nil {
			log.Fatalf("match notifications failed: %v", err)
		}
		log.Printf("match notifications scanned=%d created=%d skipped=%d emails_sent=%d emails_failed=%d",
			rep.Scanned, rep.Created, rep.Skipped, rep.EmailsSent, rep.EmailsFailed)

	case "favicons":
		rows, err := c.Concorsi.ListCandidates(ctx, repository.ConcorsoFilter{Stato: concorso.StatoOpen, Now: now})
		if err != nil {
			log.Fatalf("list concorsi failed: %v", err)
		}
		links := make([]string, 0, len(rows))
		for _, r := range rows {
			links = append(links, urlcanon.StripTracking(r.Link))
		}
		rep, err := c.FaviconUC.Warm(ctx, links)
		if err != nil {
			log.Fatalf("favicon warm failed: %v", err)
		}
		log.Printf("favicons requested=%d resolved=%d failed=%d", rep.Requested, rep.Resolved, rep.Failed)

	case "seed":
		if err := (seeder.Runner{Seeders: seeder.Defaults(now), Logger: c.Logger}).Run(ctx, c.DB); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		log.Printf("seed done")

	default:
		flag.Usage()
		os.Exit(2)
	}
}
