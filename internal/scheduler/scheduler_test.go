package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"concoro/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concoro/internal/usecase"
)

type fakeRunner struct {
	deadlineCalls int
	matchCalls    int
	deadlineErr   error
	at            time.Time
}

func (f *fakeRunner) RunDeadlineReminders(_ context.Context, now time.Time) (usecase.RunReport, error) {
	f.deadlineCalls++
	f.at = now
	return usecase.RunReport{Scanned: 2, Created: 1}, f.deadlineErr
}

func (f *fakeRunner) RunMatchNotifications(context.Context, time.Time) (usecase.RunReport, error) {
	f.matchCalls++
	return usecase.RunReport{}, nil
}

func TestRunOnce_RunsBothJobsEvenAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	r := &fakeRunner{deadlineErr: errors.New("db down")}
	s := New(r, "", time.UTC, log.New(&buf, "", 0))
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunOnce(context.Background())

	assert.Equal(t, 1, r.deadlineCalls)
	assert.Equal(t, 1, r.matchCalls)
	assert.Equal(t, fixed, r.at)
	assert.Contains(t, buf.String(), "Deadline reminders failed")
}

func TestRunOnce_SkipsCancelledContext(t *testing.T) {
	r := &fakeRunner{}
	s := New(r, "", nil, log.New(&bytes.Buffer{}, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.RunOnce(ctx)

	assert.Zero(t, r.deadlineCalls)
}

func TestStart_SchedulesInLocation(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	s := New(&fakeRunner{}, "0 8 * * *", rome, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.Next().In(rome)
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(&fakeRunner{}, "not a spec", time.UTC, log.New(&bytes.Buffer{}, "", 0))
	assert.Error(t, s.Start(context.Background()))
}

func TestRunOnce_OneReplicaPerTick(t *testing.T) {
	shared := cache.NewWithStores(nil, nil, nil)
	fixed := time.Date(2026, 3, 2, 8, 0, 10, 0, time.UTC)

	first, second := &fakeRunner{}, &fakeRunner{}
	a := New(first, "", time.UTC, log.New(&bytes.Buffer{}, "", 0)).WithLocker(shared)
	b := New(second, "", time.UTC, log.New(&bytes.Buffer{}, "", 0)).WithLocker(shared)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed.Add(20 * time.Second) }

	a.RunOnce(context.Background())
	b.RunOnce(context.Background())

	assert.Equal(t, 1, first.deadlineCalls)
	assert.Zero(t, second.deadlineCalls)
	assert.Zero(t, second.matchCalls)

	b.now = func() time.Time { return fixed.Add(24 * time.Hour) }
	b.RunOnce(context.Background())
	assert.Equal(t, 1, second.deadlineCalls)
}
