package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/notification"
	"concoro/internal/repository"

	"github.com/google/uuid"
)

type NotificationPage struct {
	Items      []notification.Notification
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasMore    bool
}

type MatchItem struct {
	Match    notification.Match
	Concorso concorso.Concorso
}

type NotificationUsecase interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) (NotificationPage, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Matches(ctx context.Context, userID uuid.UUID, limit int) ([]MatchItem, error)
}

type Notifications struct {
	repo     repository.NotificationRepository
	matches  repository.MatchRepository
	concorsi repository.ConcorsoRepository
	cache    Cache
	logger   *log.Logger
	now      func() time.Time
}

func NewNotificationUsecase(repo repository.NotificationRepository, matches repository.MatchRepository, concorsi repository.ConcorsoRepository, cache Cache, logger *log.Logger) *Notifications {
	return &Notifications{repo: repo, matches: matches, concorsi: concorsi, cache: cache, logger: logger, now: time.Now}
}

func (u *Notifications) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) (NotificationPage, error) {
	if userID == uuid.Nil {
		return NotificationPage{}, ErrInvalidInput
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 0 || limit > maxPageLimit {
		return NotificationPage{}, ErrInvalidInput
	}
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return NotificationPage{}, ErrInvalidInput
	}

	items, total, err := u.repo.List(ctx, userID, unreadOnly, limit, (page-1)*limit)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Notify] List failed user_id=%s err=%v", userID, err)
		}
		return NotificationPage{}, ErrInternal
	}
	return NotificationPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
		HasMore:    page*limit < total,
	}, nil
}

func (u *Notifications) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidInput
	}
	n, err := u.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, ErrInternal
	}
	return n, nil
}

// MarkRead reports ErrNotFound for ids that belong to another user.
func (u *Notifications) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.repo.MarkRead(ctx, userID, id, u.now().UTC()); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

func (u *Notifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidInput
	}
	n, err := u.repo.MarkAllRead(ctx, userID, u.now().UTC())
	if err != nil {
		return 0, ErrInternal
	}
	return n, nil
}

func (u *Notifications) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

// Matches returns the stored matches whose concorso still exists, best first.
func (u *Notifications) Matches(ctx context.Context, userID uuid.UUID, limit int) ([]MatchItem, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 0 || limit > maxPageLimit {
		return nil, ErrInvalidInput
	}

	all, err := loadCached(ctx, u.cache, matchesCacheKey(userID.String()), listCacheTTL, func(ctx context.Context) ([]MatchItem, error) {
		ms, err := u.matches.ListByUser(ctx, userID, maxPageLimit)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(ms))
		for _, m := range ms {
			ids = append(ids, m.ConcorsoID)
		}
		byID, err := u.concorsi.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make([]MatchItem, 0, len(ms))
		for _, m := range ms {
			c, ok := byID[m.ConcorsoID]
			if !ok {
				continue
			}
			out = append(out, MatchItem{Match: m, Concorso: withSlug(c)})
		}
		return out, nil
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Notify] Matches failed user_id=%s err=%v", userID, err)
		}
		return nil, ErrInternal
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
