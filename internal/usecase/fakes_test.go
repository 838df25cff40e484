package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/domain/favicon"
	"concoro/internal/domain/notification"
	"concoro/internal/domain/saved"
	"concoro/internal/domain/user"
	"concoro/internal/infrastructure/email"
	"concoro/internal/repository"

	"github.com/google/uuid"
)

type fakeConcorsoRepo struct {
	rows       []concorso.Concorso
	err        error
	lastFilter repository.ConcorsoFilter
	listCalls  int
}

func (f *fakeConcorsoRepo) ListCandidates(_ context.Context, flt repository.ConcorsoFilter) ([]concorso.Concorso, error) {
	f.listCalls++
	f.lastFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	out := []concorso.Concorso{}
	for _, c := range f.rows {
		switch flt.Stato {
		case concorso.StatoOpen:
			if !c.IsOpen(flt.Now) {
				continue
			}
		case concorso.StatoClosed:
			if c.IsOpen(flt.Now) {
				continue
			}
		}
		if flt.Settore != "" && !strings.EqualFold(c.Settore, flt.Settore) {
			continue
		}
		if flt.Tipologia != "" && !strings.EqualFold(c.Tipologia, flt.Tipologia) {
			continue
		}
		if flt.Ente != "" && c.Ente != flt.Ente {
			continue
		}
		if flt.DeadlineFrom != nil || flt.DeadlineTo != nil {
			if c.DataChiusura == nil {
				continue
			}
			if flt.DeadlineFrom != nil && c.DataChiusura.Before(*flt.DeadlineFrom) {
				continue
			}
			if flt.DeadlineTo != nil && c.DataChiusura.After(*flt.DeadlineTo) {
				continue
			}
		}
		out = append(out, c)
	}
	if flt.Order == repository.OrderDeadline {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DataChiusura, out[j].DataChiusura
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
	}
	if flt.Offset >= len(out) {
		return []concorso.Concorso{}, nil
	}
	out = out[flt.Offset:]
	limit := flt.Cap
	if limit <= 0 {
		limit = repository.DefaultCandidateCap
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeConcorsoRepo) GetByID(_ context.Context, id string) (concorso.Concorso, error) {
	if f.err != nil {
		return concorso.Concorso{}, f.err
	}
	for _, c := range f.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return concorso.Concorso{}, concorso.ErrNotFound
}

func (f *fakeConcorsoRepo) GetBySlug(_ context.Context, slug string) (concorso.Concorso, error) {
	for _, c := range f.rows {
		if c.Slug != "" && c.Slug == slug {
			return c, nil
		}
	}
	return concorso.Concorso{}, concorso.ErrNotFound
}

func (f *fakeConcorsoRepo) GetByShortID(_ context.Context, short string) (concorso.Concorso, error) {
	for _, c := range f.rows {
		if strings.HasPrefix(strings.ToLower(c.ID), short) {
			return c, nil
		}
	}
	return concorso.Concorso{}, concorso.ErrNotFound
}

func (f *fakeConcorsoRepo) GetByIDs(_ context.Context, ids []string) (map[string]concorso.Concorso, error) {
	out := map[string]concorso.Concorso{}
	for _, id := range ids {
		for _, c := range f.rows {
			if c.ID == id {
				out[id] = c
			}
		}
	}
	return out, f.err
}

func (f *fakeConcorsoRepo) ListEnti(_ context.Context, now time.Time) ([]repository.EnteCount, error) {
	counts := map[string]int{}
	for _, c := range f.rows {
		if c.IsOpen(now) {
			counts[c.Ente]++
		}
	}
	out := make([]repository.EnteCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, repository.EnteCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, f.err
}

func (f *fakeConcorsoRepo) ListOpenAreas(_ context.Context, now time.Time) ([]string, error) {
	out := []string{}
	for _, c := range f.rows {
		if c.IsOpen(now) {
			out = append(out, c.AreaGeografica)
		}
	}
	return out, f.err
}

func (f *fakeConcorsoRepo) ListPublishedSince(_ context.Context, after repository.Cursor, limit int) ([]concorso.Concorso, error) {
	out := []concorso.Concorso{}
	for _, c := range f.rows {
		pub := c.PublishedAt()
		if pub.After(after.At) || (pub.Equal(after.At) && c.ID > after.ID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PublishedAt(), out[j].PublishedAt()
		if a.Equal(b) {
			return out[i].ID < out[j].ID
		}
		return a.Before(b)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, f.err
}

func (f *fakeConcorsoRepo) ListForSitemap(context.Context, time.Time, time.Time) ([]concorso.Concorso, error) {
	return f.rows, f.err
}

type fakeArticoloRepo struct {
	rows []articolo.Articolo
}

func (f *fakeArticoloRepo) List(_ context.Context, tag string, limit, offset int) ([]articolo.Articolo, int, error) {
	matched := []articolo.Articolo{}
	for _, a := range f.rows {
		if tag == "" || containsString(a.Tags, tag) {
			matched = append(matched, a)
		}
	}
	total := len(matched)
	if offset >= total {
		return []articolo.Articolo{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (f *fakeArticoloRepo) GetBySlug(_ context.Context, slug string) (articolo.Articolo, error) {
	for _, a := range f.rows {
		if a.Slug == slug {
			return a, nil
		}
	}
	return articolo.Articolo{}, articolo.ErrNotFound
}

func (f *fakeArticoloRepo) ListByConcorso(_ context.Context, concorsoID string, limit int) ([]articolo.Articolo, error) {
	out := []articolo.Articolo{}
	for _, a := range f.rows {
		if a.ConcorsoID != nil && *a.ConcorsoID == concorsoID && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticoloRepo) ListTags(context.Context) ([]articolo.TagCount, error) {
	return []articolo.TagCount{}, nil
}

func (f *fakeArticoloRepo) ListAll(context.Context) ([]articolo.Articolo, error) {
	return f.rows, nil
}

type fakeSavedRepo struct {
	recs []saved.Record
}

func (f *fakeSavedRepo) Save(_ context.Context, rec saved.Record) (bool, error) {
	for _, r := range f.recs {
		if r.UserID == rec.UserID && r.ConcorsoID == rec.ConcorsoID {
			return false, nil
		}
	}
	f.recs = append(f.recs, rec)
	return true, nil
}

func (f *fakeSavedRepo) Delete(_ context.Context, userID uuid.UUID, concorsoID string) error {
	out := f.recs[:0]
	for _, r := range f.recs {
		if r.UserID == userID && r.ConcorsoID == concorsoID {
			continue
		}
		out = append(out, r)
	}
	f.recs = out
	return nil
}

func (f *fakeSavedRepo) Exists(_ context.Context, userID uuid.UUID, concorsoID string) (bool, error) {
	for _, r := range f.recs {
		if r.UserID == userID && r.ConcorsoID == concorsoID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSavedRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]saved.Record, error) {
	out := []saved.Record{}
	for i := len(f.recs) - 1; i >= 0; i-- {
		if f.recs[i].UserID == userID {
			out = append(out, f.recs[i])
		}
	}
	return out, nil
}

func (f *fakeSavedRepo) ListAll(context.Context) ([]saved.Record, error) {
	return f.recs, nil
}

type fakeNotificationRepo struct {
	items []notification.Notification
	logs  []notification.EmailLog
}

func (f *fakeNotificationRepo) Exists(_ context.Context, userID uuid.UUID, concorsoID, typ string, daysLeft int) (bool, error) {
	for _, n := range f.items {
		if n.UserID == userID && n.ConcorsoID == concorsoID && n.Type == typ && n.DaysLeft == daysLeft {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) Insert(ctx context.Context, n notification.Notification) (bool, error) {
	if ok, _ := f.Exists(ctx, n.UserID, n.ConcorsoID, n.Type, n.DaysLeft); ok {
		return false, nil
	}
	f.items = append(f.items, n)
	return true, nil
}

func (f *fakeNotificationRepo) List(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, int, error) {
	matched := []notification.Notification{}
	for _, n := range f.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	total := len(matched)
	if offset >= total {
		return []notification.Notification{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, it := range f.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID, at time.Time) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &at
			return nil
		}
	}
	return notification.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for i := range f.items {
		if f.items[i].UserID == userID && !f.items[i].IsRead {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotFound
}

func (f *fakeNotificationRepo) InsertEmailLog(_ context.Context, l notification.EmailLog) error {
	f.logs = append(f.logs, l)
	return nil
}

type fakeMatchRepo struct {
	items   []notification.Match
	deleted []uuid.UUID
	// failFor makes Upsert fail for the listed concorso ids.
	failFor map[string]error
}

func (f *fakeMatchRepo) Upsert(_ context.Context, m notification.Match) error {
	if err := f.failFor[m.ConcorsoID]; err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].UserID == m.UserID && f.items[i].ConcorsoID == m.ConcorsoID {
			f.items[i] = m
			return nil
		}
	}
	f.items = append(f.items, m)
	return nil
}

func (f *fakeMatchRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]notification.Match, error) {
	out := []notification.Match{}
	for _, m := range f.items {
		if m.UserID == userID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	f.deleted = append(f.deleted, userID)
	out := f.items[:0]
	for _, m := range f.items {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	f.items = out
	return nil
}

type fakeJobRunRepo struct {
	last map[string]repository.Cursor
}

func (f *fakeJobRunRepo) LastRun(_ context.Context, name string) (repository.Cursor, error) {
	return f.last[name], nil
}

func (f *fakeJobRunRepo) SetLastRun(_ context.Context, name string, at repository.Cursor) error {
	if f.last == nil {
		f.last = map[string]repository.Cursor{}
	}
	f.last[name] = at
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]user.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]user.Profile
}

func newFakeProfileRepo(ps ...user.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{profiles: map[uuid.UUID]user.Profile{}}
	for _, p := range ps {
		f.profiles[p.UserID] = p
	}
	return f
}

func (f *fakeProfileRepo) CreateProfile(_ context.Context, p user.Profile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) GetProfile(_ context.Context, userID uuid.UUID) (user.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return user.Profile{}, user.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) UpdateProfile(_ context.Context, p user.Profile) error {
	if _, ok := f.profiles[p.UserID]; !ok {
		return user.ErrNotFound
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) ListNotifiable(context.Context) ([]user.Profile, error) {
	out := make([]user.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

type fakeFaviconRepo struct {
	rows    map[string]favicon.Favicon
	upserts int
}

func (f *fakeFaviconRepo) Get(_ context.Context, domain string) (favicon.Favicon, error) {
	r, ok := f.rows[domain]
	if !ok {
		return favicon.Favicon{}, repository.ErrFaviconNotFound
	}
	return r, nil
}

func (f *fakeFaviconRepo) Upsert(_ context.Context, fav favicon.Favicon) error {
	f.upserts++
	f.rows[fav.Domain] = fav
	return nil
}

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m email.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []notification.Notification
}

func (f *fakePusher) PushNotification(n notification.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, n)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrInt(v int) *int { return &v }
