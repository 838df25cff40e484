package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/notification"
	"concoro/internal/domain/saved"
	"concoro/internal/domain/user"
	"concoro/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierFixture struct {
	concorsi      *fakeConcorsoRepo
	saved         *fakeSavedRepo
	profiles      *fakeProfileRepo
	notifications *fakeNotificationRepo
	matches       *fakeMatchRepo
	jobRuns       *fakeJobRunRepo
	sender        *fakeSender
	pusher        *fakePusher
}

func newNotifierFixture(rows []concorso.Concorso, profiles ...user.Profile) *notifierFixture {
	return &notifierFixture{
		concorsi:      &fakeConcorsoRepo{rows: rows},
		saved:         &fakeSavedRepo{},
		profiles:      newFakeProfileRepo(profiles...),
		notifications: &fakeNotificationRepo{},
		matches:       &fakeMatchRepo{},
		jobRuns:       &fakeJobRunRepo{},
		sender:        &fakeSender{},
		pusher:        &fakePusher{},
	}
}

func (f *notifierFixture) notifier(withSender bool) *Notifier {
	deps := NotifierDeps{
		Saved:         f.saved,
		Concorsi:      f.concorsi,
		Profiles:      f.profiles,
		Notifications: f.notifications,
		Matches:       f.matches,
		JobRuns:       f.jobRuns,
		Pusher:        f.pusher,
	}
	if withSender {
		deps.Sender = f.sender
	}
	return NewNotifier(deps, NotifierConfig{Location: time.UTC, SiteBaseURL: "https://www.concoro.it"}, nil)
}

func testProfile(email string) user.Profile {
	p := user.DefaultProfile(uuid.New(), email)
	p.Nome = "Giulia"
	return p
}

func TestRunDeadlineRemindersThresholds(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	p := testProfile("giulia@example.com")
	rows := []concorso.Concorso{
		{ID: "three", Titolo: "Istruttore amministrativo", Ente: "Comune di Bari", DataChiusura: ptrTime(now.Add(75 * time.Hour))},
		{ID: "five", Titolo: "Autista", DataChiusura: ptrTime(now.Add(5 * 24 * time.Hour))},
		{ID: "closed", Titolo: "Archivista", Stato: concorso.StatoClosed, DataChiusura: ptrTime(now.Add(24 * time.Hour))},
	}
	f := newNotifierFixture(rows, p)
	for _, id := range []string{"three", "five", "closed", "gone"} {
		f.saved.recs = append(f.saved.recs, saved.Record{ID: uuid.New(), UserID: p.UserID, ConcorsoID: id})
	}

	n := f.notifier(true)
	rep, err := n.RunDeadlineReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Scanned)
	assert.Equal(t, 1, rep.Created)
	assert.Equal(t, 3, rep.Skipped)
	assert.Equal(t, 1, rep.EmailsSent)

	require.Len(t, f.notifications.items, 1)
	got := f.notifications.items[0]
	assert.Equal(t, "three", got.ConcorsoID)
	assert.Equal(t, notification.TypeDeadline, got.Type)
	assert.Equal(t, 3, got.DaysLeft)
	assert.Contains(t, got.Message, "Comune di Bari")
	assert.Len(t, f.pusher.pushed, 1)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "giulia@example.com", f.sender.sent[0].To)
	require.Len(t, f.notifications.logs, 1)
	assert.Equal(t, notification.EmailStatusSent, f.notifications.logs[0].Status)

	again, err := n.RunDeadlineReminders(context.Background(), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Len(t, f.notifications.items, 1)
	assert.Len(t, f.sender.sent, 1)
}

func TestRunDeadlineRemindersRespectsPreferences(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	muted := testProfile("muted@example.com")
	muted.NotifyDeadlines = false
	noMail := testProfile("nomail@example.com")
	noMail.NotifyEmail = false

	rows := []concorso.Concorso{{ID: "today", Titolo: "Vigile urbano", DataChiusura: ptrTime(now.Add(3 * time.Hour))}}
	f := newNotifierFixture(rows, muted, noMail)
	f.saved.recs = []saved.Record{
		{UserID: muted.UserID, ConcorsoID: "today"},
		{UserID: noMail.UserID, ConcorsoID: "today"},
	}

	rep, err := f.notifier(true).RunDeadlineReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)
	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, noMail.UserID, f.notifications.items[0].UserID)
	assert.Equal(t, 0, f.notifications.items[0].DaysLeft)
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.notifications.logs)
}

func TestRunDeadlineRemindersEmailOutcomes(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	rows := []concorso.Concorso{{ID: "tomorrow", Titolo: "Educatore", DataChiusura: ptrTime(now.Add(24 * time.Hour))}}

	t.Run("provider failure is logged as failed", func(t *testing.T) {
		p := testProfile("x@example.com")
		f := newNotifierFixture(rows, p)
		f.saved.recs = []saved.Record{{UserID: p.UserID, ConcorsoID: "tomorrow"}}
		f.sender.err = errors.New("brevo: 500")

		rep, err := f.notifier(true).RunDeadlineReminders(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Created)
		assert.Equal(t, 1, rep.EmailsFailed)
		require.Len(t, f.notifications.logs, 1)
		assert.Equal(t, notification.EmailStatusFailed, f.notifications.logs[0].Status)
		assert.Equal(t, "brevo: 500", f.notifications.logs[0].Error)
	})

	t.Run("no sender is logged as skipped", func(t *testing.T) {
		p := testProfile("y@example.com")
		f := newNotifierFixture(rows, p)
		f.saved.recs = []saved.Record{{UserID: p.UserID, ConcorsoID: "tomorrow"}}

		rep, err := f.notifier(false).RunDeadlineReminders(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Created)
		require.Len(t, f.notifications.logs, 1)
		assert.Equal(t, notification.EmailStatusSkipped, f.notifications.logs[0].Status)
	})

	t.Run("missing recipient is skipped", func(t *testing.T) {
		p := testProfile("")
		f := newNotifierFixture(rows, p)
		f.saved.recs = []saved.Record{{UserID: p.UserID, ConcorsoID: "tomorrow"}}

		_, err := f.notifier(true).RunDeadlineReminders(context.Background(), now)
		require.NoError(t, err)
		assert.Empty(t, f.sender.sent)
		require.Len(t, f.notifications.logs, 1)
		assert.Equal(t, notification.EmailStatusSkipped, f.notifications.logs[0].Status)
	})
}

func TestRunMatchNotifications(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	p := testProfile("match@example.com")
	p.Regioni = []string{"puglia"}
	p.Settori = []string{"Sanità"}
	p.Keywords = []string{"infermiere"}

	rows := []concorso.Concorso{
		{ID: "strong", Titolo: "Infermiere professionale", Ente: "ASL Bari", AreaGeografica: "Bari", Settore: "Sanità", DataPubblicazione: ptrTime(now.Add(-2 * time.Hour))},
		{ID: "weak", Titolo: "Autista", AreaGeografica: "Lecce", Settore: "Trasporti", DataPubblicazione: ptrTime(now.Add(-time.Hour))},
		{ID: "old", Titolo: "Infermiere", AreaGeografica: "Bari", Settore: "Sanità", DataPubblicazione: ptrTime(now.Add(-72 * time.Hour))},
	}
	f := newNotifierFixture(rows, p)
	n := f.notifier(true)

	rep, err := n.RunMatchNotifications(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, 1, rep.Created)
	assert.Equal(t, 1, rep.Skipped)

	require.Len(t, f.matches.items, 1)
	assert.Equal(t, "strong", f.matches.items[0].ConcorsoID)
	assert.Equal(t, 100, f.matches.items[0].Score)

	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, notification.TypeMatch, f.notifications.items[0].Type)
	assert.Equal(t, notification.NoDaysLeft, f.notifications.items[0].DaysLeft)
	assert.Equal(t, repository.Cursor{At: now.Add(-time.Hour), ID: "weak"}, f.jobRuns.last[matchRunName])

	again, err := n.RunMatchNotifications(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Len(t, f.notifications.items, 1)
}

func TestRunMatchNotificationsSkipsOptedOut(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	p := testProfile("off@example.com")
	p.Regioni = []string{"lazio"}
	p.Keywords = []string{"archivista"}
	p.NotifyMatches = false

	rows := []concorso.Concorso{{ID: "a", Titolo: "Archivista", AreaGeografica: "Roma", DataPubblicazione: ptrTime(now.Add(-time.Hour))}}
	f := newNotifierFixture(rows, p)

	rep, err := f.notifier(true).RunMatchNotifications(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Scanned)
	assert.Empty(t, f.matches.items)
	assert.Empty(t, f.notifications.items)
}

func TestRunMatchNotificationsRetriesFailedPairs(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	p := testProfile("retry@example.com")
	p.Regioni = []string{"puglia"}
	p.Keywords = []string{"infermiere"}

	rows := []concorso.Concorso{
		{ID: "first", Titolo: "Infermiere", AreaGeografica: "Bari", DataPubblicazione: ptrTime(now.Add(-3 * time.Hour))},
		{ID: "second", Titolo: "Infermiere pediatrico", AreaGeografica: "Lecce", DataPubblicazione: ptrTime(now.Add(-2 * time.Hour))},
		{ID: "third", Titolo: "Infermiere", AreaGeografica: "Foggia", DataPubblicazione: ptrTime(now.Add(-time.Hour))},
	}
	f := newNotifierFixture(rows, p)
	f.matches.failFor = map[string]error{"second": errors.New("db down")}
	n := f.notifier(false)

	rep, err := n.RunMatchNotifications(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Errors)
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, repository.Cursor{At: now.Add(-3 * time.Hour), ID: "first"}, f.jobRuns.last[matchRunName])

	f.matches.failFor = nil
	rep, err = n.RunMatchNotifications(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Errors)
	assert.Equal(t, 1, rep.Created)
	assert.Len(t, f.notifications.items, 3)
	assert.Equal(t, repository.Cursor{At: now.Add(-time.Hour), ID: "third"}, f.jobRuns.last[matchRunName])
}

func TestRunMatchNotificationsKeepsRowsSharingTimestamp(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	pub := now.Add(-time.Hour)
	p := testProfile("same@example.com")
	p.Regioni = []string{"lazio"}
	p.Keywords = []string{"archivista"}

	rows := []concorso.Concorso{
		{ID: "a", Titolo: "Archivista", AreaGeografica: "Roma", DataPubblicazione: ptrTime(pub)},
		{ID: "b", Titolo: "Archivista", AreaGeografica: "Roma", DataPubblicazione: ptrTime(pub)},
	}
	f := newNotifierFixture(rows, p)
	f.jobRuns.last = map[string]repository.Cursor{matchRunName: {At: pub, ID: "a"}}

	rep, err := f.notifier(false).RunMatchNotifications(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)
	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, "b", f.notifications.items[0].ConcorsoID)
}
