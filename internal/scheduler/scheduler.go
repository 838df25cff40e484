// Package scheduler runs the periodic notification jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"concoro/internal/usecase"
)

const (
	DefaultSpec = "0 8 * * *"

	runLockPrefix = "scheduler:notifications:"
	runLockTTL    = 30 * time.Minute
)

// Locker claims a key across replicas; the unified cache satisfies it.
type Locker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// Scheduler wraps robfig/cron and fires deadline reminders followed by match
// notifications on every tick.
type Scheduler struct {
	cron     *cron.Cron
	runner   usecase.NotificationRunner
	locker   Locker
	spec     string
	logger   *log.Logger
	now      func() time.Time
	entryID  cron.EntryID
	runCount int
}

func New(runner usecase.NotificationRunner, spec string, loc *time.Location, logger *log.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	cl := cron.VerbosePrintfLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		spec:   spec,
		logger: logger,
		now:    time.Now,
	}
}

// WithLocker makes every tick claim a shared key first, so only one replica
// runs a given cycle.
func (s *Scheduler) WithLocker(l Locker) *Scheduler {
	s.locker = l
	return s
}

func (s *Scheduler) claim(ctx context.Context, now time.Time) bool {
	if s.locker == nil {
		return true
	}
	key := runLockPrefix + now.UTC().Truncate(time.Minute).Format(time.RFC3339)
	host, _ := os.Hostname()
	ok, err := s.locker.SetIfNotExists(ctx, key, fmt.Sprintf("%s:%d", host, os.Getpid()), runLockTTL)
	if err != nil {
		s.logger.Printf("[scheduler] Run lock unavailable key=%s err=%v", key, err)
		return true
	}
	return ok
}

// Start registers the job and starts the cron loop. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Printf("[scheduler] Cron started spec=%q", s.spec)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Println("[scheduler] Cron stopped")
}

// Next reports the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunOnce executes one notification cycle. Failures are logged and the
// next tick tries again.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := s.now()
	if !s.claim(ctx, now) {
		s.logger.Printf("[scheduler] Notification cycle claimed by another replica at=%s", now.UTC().Format(time.RFC3339))
		return
	}
	s.runCount++
	s.logger.Printf("[scheduler] Notification cycle started run=%d", s.runCount)

	rep, err := s.runner.RunDeadlineReminders(ctx, now)
	if err != nil {
		s.logger.Printf("[scheduler] Deadline reminders failed err=%v", err)
	} else {
		s.logger.Printf("[scheduler] Deadline reminders scanned=%d created=%d emails_sent=%d emails_failed=%d",
			rep.Scanned, rep.Created, rep.EmailsSent, rep.EmailsFailed)
	}

	rep, err = s.runner.RunMatchNotifications(ctx, now)
	if err != nil {
		s.logger.Printf("[scheduler] Match notifications failed err=%v", err)
	} else {
		s.logger.Printf("[scheduler] Match notifications scanned=%d created=%d emails_sent=%d emails_failed=%d",
			rep.Scanned, rep.Created, rep.EmailsSent, rep.EmailsFailed)
	}

	s.logger.Println("[scheduler] Notification cycle complete")
}
