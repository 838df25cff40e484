package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/notification"
	"concoro/internal/domain/saved"
	"concoro/internal/domain/user"
	"concoro/internal/infrastructure/email"
	"concoro/internal/pkg/urlcanon"
	"concoro/internal/repository"

	"github.com/google/uuid"
)

const (
	matchRunName       = "match_notifications"
	matchRunBatch      = 1000
	firstMatchLookback = 24 * time.Hour
)

// NotificationPusher delivers a freshly created notification to live clients.
type NotificationPusher interface {
	PushNotification(n notification.Notification)
}

type NotifierConfig struct {
	DeadlineThresholds []int
	MatchMinScore      int
	Location           *time.Location
	SiteBaseURL        string
}

type RunReport struct {
	Scanned      int
	Created      int
	Skipped      int
	EmailsSent   int
	EmailsFailed int
	Errors       int
}

type NotificationRunner interface {
	RunDeadlineReminders(ctx context.Context, now time.Time) (RunReport, error)
	RunMatchNotifications(ctx context.Context, now time.Time) (RunReport, error)
}

type Notifier struct {
	saved         repository.SavedRepository
	concorsi      repository.ConcorsoRepository
	profiles      user.ProfileRepository
	notifications repository.NotificationRepository
	matches       repository.MatchRepository
	jobRuns       repository.JobRunRepository
	sender        email.Sender
	pusher        NotificationPusher
	cache         Cache
	cfg           NotifierConfig
	logger        *log.Logger
}

type NotifierDeps struct {
	Saved         repository.SavedRepository
	Concorsi      repository.ConcorsoRepository
	Profiles      user.ProfileRepository
	Notifications repository.NotificationRepository
	Matches       repository.MatchRepository
	JobRuns       repository.JobRunRepository
	Sender        email.Sender
	Pusher        NotificationPusher
	Cache         Cache
}

func NewNotifier(deps NotifierDeps, cfg NotifierConfig, logger *log.Logger) *Notifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.DeadlineThresholds) == 0 {
		cfg.DeadlineThresholds = []int{7, 3, 1, 0}
	}
	if cfg.MatchMinScore <= 0 {
		cfg.MatchMinScore = 60
	}
	return &Notifier{
		saved:         deps.Saved,
		concorsi:      deps.Concorsi,
		profiles:      deps.Profiles,
		notifications: deps.Notifications,
		matches:       deps.Matches,
		jobRuns:       deps.JobRuns,
		sender:        deps.Sender,
		pusher:        deps.Pusher,
		cache:         deps.Cache,
		cfg:           cfg,
		logger:        logger,
	}
}

func (n *Notifier) logf(format string, args ...any) {
	if n.logger != nil {
		n.logger.Printf(format, args...)
	}
}

func (n *Notifier) isThreshold(days int) bool {
	for _, t := range n.cfg.DeadlineThresholds {
		if t == days {
			return true
		}
	}
	return false
}

// RunDeadlineReminders creates one deadline notification per saved concorso
// and threshold crossed at now. Re-running for the same day creates nothing.
func (n *Notifier) RunDeadlineReminders(ctx context.Context, now time.Time) (RunReport, error) {
	var rep RunReport

	recs, err := n.saved.ListAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("list saved: %w", err)
	}

	ids := make([]string, 0, len(recs))
	seen := map[string]struct{}{}
	for _, r := range recs {
		if _, ok := seen[r.ConcorsoID]; ok {
			continue
		}
		seen[r.ConcorsoID] = struct{}{}
		ids = append(ids, r.ConcorsoID)
	}
	byID, err := n.concorsi.GetByIDs(ctx, ids)
	if err != nil {
		return rep, fmt.Errorf("load concorsi: %w", err)
	}

	profiles := newProfileLoader(n.profiles)
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Scanned++
		n.remindOne(ctx, r, byID, profiles, now, &rep)
	}

	n.logf("[Notify] Deadline run done scanned=%d created=%d skipped=%d emails_sent=%d emails_failed=%d errors=%d",
		rep.Scanned, rep.Created, rep.Skipped, rep.EmailsSent, rep.EmailsFailed, rep.Errors)
	return rep, nil
}

func (n *Notifier) remindOne(ctx context.Context, r saved.Record, byID map[string]concorso.Concorso, profiles *profileLoader, now time.Time, rep *RunReport) {
	c, ok := byID[r.ConcorsoID]
	if !ok || !c.IsOpen(now) {
		rep.Skipped++
		return
	}
	days, ok := c.DaysLeft(now, n.cfg.Location)
	if !ok || !n.isThreshold(days) {
		rep.Skipped++
		return
	}

	p, err := profiles.get(ctx, r.UserID)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			rep.Errors++
			n.logf("[Notify] Profile load failed user_id=%s err=%v", r.UserID, err)
		} else {
			rep.Skipped++
		}
		return
	}
	if !p.NotifyDeadlines {
		rep.Skipped++
		return
	}

	c = withSlug(c)
	notif := notification.Notification{
		ID:         uuid.New(),
		UserID:     r.UserID,
		ConcorsoID: c.ID,
		Type:       notification.TypeDeadline,
		Title:      email.DeadlineSubject(c.Titolo, days),
		Message:    deadlineMessage(c, days, n.cfg.Location),
		DaysLeft:   days,
		CreatedAt:  now.UTC(),
	}
	created, err := n.create(ctx, notif)
	if err != nil {
		rep.Errors++
		return
	}
	if !created {
		rep.Skipped++
		return
	}
	rep.Created++

	if !p.NotifyEmail {
		return
	}
	data := email.DeadlineData{
		Nome:     p.Nome,
		Titolo:   c.Titolo,
		Ente:     c.Ente,
		DaysLeft: days,
		URL:      urlcanon.Canonical(n.cfg.SiteBaseURL, urlcanon.ConcorsoPath(c.Slug)),
	}
	if c.DataChiusura != nil {
		data.DataChiusura = c.DataChiusura.In(n.cfg.Location).Format("02/01/2006")
	}
	html, err := email.RenderDeadline(data)
	n.deliver(ctx, p, notif, email.TemplateDeadline, html, err, rep)
}

func deadlineMessage(c concorso.Concorso, days int, loc *time.Location) string {
	msg := "Il concorso che hai salvato"
	if c.Ente != "" {
		msg += " presso " + c.Ente
	}
	switch {
	case days <= 0:
		msg += " scade oggi"
	case days == 1:
		msg += " scade domani"
	default:
		msg += fmt.Sprintf(" scade tra %d giorni", days)
	}
	if c.DataChiusura != nil {
		msg += " (" + c.DataChiusura.In(loc).Format("02/01/2006 15:04") + ")"
	}
	return msg + "."
}

// create checks for an existing notification first; the unique key on the
// table catches concurrent runs.
func (n *Notifier) create(ctx context.Context, notif notification.Notification) (bool, error) {
	exists, err := n.notifications.Exists(ctx, notif.UserID, notif.ConcorsoID, notif.Type, notif.DaysLeft)
	if err != nil {
		n.logf("[Notify] Exists check failed user_id=%s concorso_id=%s err=%v", notif.UserID, notif.ConcorsoID, err)
		return false, err
	}
	if exists {
		return false, nil
	}
	created, err := n.notifications.Insert(ctx, notif)
	if err != nil {
		n.logf("[Notify] Insert failed user_id=%s concorso_id=%s err=%v", notif.UserID, notif.ConcorsoID, err)
		return false, err
	}
	if created && n.pusher != nil {
		n.pusher.PushNotification(notif)
	}
	return created, nil
}

func (n *Notifier) deliver(ctx context.Context, p user.Profile, notif notification.Notification, tmpl, html string, renderErr error, rep *RunReport) {
	nid := notif.ID
	entry := notification.EmailLog{
		ID:             uuid.New(),
		UserID:         p.UserID,
		NotificationID: &nid,
		Recipient:      p.Email,
		Subject:        notif.Title,
		Template:       tmpl,
		CreatedAt:      notif.CreatedAt,
	}

	switch {
	case p.Email == "":
		entry.Status = notification.EmailStatusSkipped
		entry.Error = "missing recipient"
	case renderErr != nil:
		entry.Status = notification.EmailStatusFailed
		entry.Error = renderErr.Error()
		rep.EmailsFailed++
	case n.sender == nil:
		entry.Status = notification.EmailStatusSkipped
		entry.Error = email.ErrDisabled.Error()
	default:
		id, err := n.sender.Send(ctx, email.Message{
			To:      p.Email,
			ToName:  p.Nome,
			Subject: notif.Title,
			HTML:    html,
			Tags:    []string{tmpl},
		})
		switch {
		case err == nil:
			entry.Status = notification.EmailStatusSent
			entry.ProviderMessageID = id
			rep.EmailsSent++
		case errors.Is(err, email.ErrDisabled):
			entry.Status = notification.EmailStatusSkipped
			entry.Error = err.Error()
		default:
			entry.Status = notification.EmailStatusFailed
			entry.Error = err.Error()
			rep.EmailsFailed++
			n.logf("[Notify] Email failed user_id=%s notification_id=%s err=%v", p.UserID, notif.ID, err)
		}
	}

	if err := n.notifications.InsertEmailLog(ctx, entry); err != nil {
		n.logf("[Notify] Email log write failed user_id=%s err=%v", p.UserID, err)
	}
}

// RunMatchNotifications scores concorsi published since the last successful
// run against every profile that wants match notifications. The watermark
// only moves past concorsi whose pairs were all stored, so a failed pair is
// retried on the next run.
func (n *Notifier) RunMatchNotifications(ctx context.Context, now time.Time) (RunReport, error) {
	var rep RunReport

	since, err := n.jobRuns.LastRun(ctx, matchRunName)
	if err != nil {
		return rep, fmt.Errorf("load watermark: %w", err)
	}
	if since.IsZero() {
		since = repository.Cursor{At: now.Add(-firstMatchLookback)}
	}

	fresh, err := n.concorsi.ListPublishedSince(ctx, since, matchRunBatch)
	if err != nil {
		return rep, fmt.Errorf("list published: %w", err)
	}
	if len(fresh) == 0 {
		n.logf("[Notify] Match run: nothing published since %s", since.At.UTC().Format(time.RFC3339))
		return rep, nil
	}

	profiles, err := n.profiles.ListNotifiable(ctx)
	if err != nil {
		return rep, fmt.Errorf("list profiles: %w", err)
	}

	watermark := since
	blocked := false
	for _, c := range fresh {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		ok := true
		if c.IsOpen(now) {
			c = withSlug(c)
			for _, p := range profiles {
				if !p.NotifyMatches {
					continue
				}
				rep.Scanned++
				if !n.matchOne(ctx, p, c, now, &rep) {
					ok = false
				}
			}
		}
		if !ok {
			blocked = true
		}
		if !blocked {
			watermark = repository.Cursor{At: c.PublishedAt(), ID: c.ID}
		}
	}

	if watermark != since {
		if err := n.jobRuns.SetLastRun(ctx, matchRunName, watermark); err != nil {
			return rep, fmt.Errorf("save watermark: %w", err)
		}
	}

	n.logf("[Notify] Match run done concorsi=%d pairs=%d created=%d emails_sent=%d emails_failed=%d errors=%d",
		len(fresh), rep.Scanned, rep.Created, rep.EmailsSent, rep.EmailsFailed, rep.Errors)
	return rep, nil
}

// matchOne reports false when the pair has to be retried.
func (n *Notifier) matchOne(ctx context.Context, p user.Profile, c concorso.Concorso, now time.Time, rep *RunReport) bool {
	m := Score(p, c)
	if m.Score < n.cfg.MatchMinScore {
		rep.Skipped++
		return true
	}
	m.ComputedAt = now.UTC()
	if err := n.matches.Upsert(ctx, m); err != nil {
		rep.Errors++
		n.logf("[Notify] Match upsert failed user_id=%s concorso_id=%s err=%v", p.UserID, c.ID, err)
		return false
	}
	if n.cache != nil {
		_ = n.cache.Delete(ctx, matchesCacheKey(p.UserID.String()))
	}

	notif := notification.Notification{
		ID:         uuid.New(),
		UserID:     p.UserID,
		ConcorsoID: c.ID,
		Type:       notification.TypeMatch,
		Title:      email.MatchSubject(c.Titolo),
		Message:    matchMessage(c, m),
		DaysLeft:   notification.NoDaysLeft,
		CreatedAt:  now.UTC(),
	}
	created, err := n.create(ctx, notif)
	if err != nil {
		rep.Errors++
		return false
	}
	if !created {
		rep.Skipped++
		return true
	}
	rep.Created++

	if !p.NotifyEmail {
		return true
	}
	html, err := email.RenderMatch(email.MatchData{
		Nome:    p.Nome,
		Titolo:  c.Titolo,
		Ente:    c.Ente,
		Score:   m.Score,
		Reasons: m.Reasons,
		URL:     urlcanon.Canonical(n.cfg.SiteBaseURL, urlcanon.ConcorsoPath(c.Slug)),
	})
	n.deliver(ctx, p, notif, email.TemplateMatch, html, err, rep)
	return true
}

func matchMessage(c concorso.Concorso, m notification.Match) string {
	msg := fmt.Sprintf("Compatibilità %d%%", m.Score)
	if c.Ente != "" {
		msg += " · " + c.Ente
	}
	return msg
}

// profileLoader memoizes profile reads for the duration of one run.
type profileLoader struct {
	repo  user.ProfileRepository
	cache map[uuid.UUID]profileResult
}

type profileResult struct {
	p   user.Profile
	err error
}

func newProfileLoader(repo user.ProfileRepository) *profileLoader {
	return &profileLoader{repo: repo, cache: map[uuid.UUID]profileResult{}}
}

func (l *profileLoader) get(ctx context.Context, id uuid.UUID) (user.Profile, error) {
	if r, ok := l.cache[id]; ok {
		return r.p, r.err
	}
	p, err := l.repo.GetProfile(ctx, id)
	if err == nil || errors.Is(err, user.ErrNotFound) {
		l.cache[id] = profileResult{p: p, err: err}
	}
	return p, err
}
