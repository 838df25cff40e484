package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"concoro/internal/domain/concorso"
	"concoro/internal/domain/saved"
	"concoro/internal/repository"

	"github.com/google/uuid"
)

type SavedItem struct {
	Record   saved.Record
	Concorso concorso.Concorso
	// Missing is true when the concorso was removed after being saved.
	Missing bool
}

type SavedUsecase interface {
	Save(ctx context.Context, userID uuid.UUID, concorsoID string) (saved.Record, error)
	Unsave(ctx context.Context, userID uuid.UUID, concorsoID string) error
	List(ctx context.Context, userID uuid.UUID) ([]SavedItem, error)
	IsSaved(ctx context.Context, userID uuid.UUID, concorsoID string) (bool, error)
}

type Saved struct {
	repo     repository.SavedRepository
	concorsi repository.ConcorsoRepository
	logger   *log.Logger
	now      func() time.Time
}

func NewSavedUsecase(repo repository.SavedRepository, concorsi repository.ConcorsoRepository, logger *log.Logger) *Saved {
	return &Saved{repo: repo, concorsi: concorsi, logger: logger, now: time.Now}
}

func (u *Saved) Save(ctx context.Context, userID uuid.UUID, concorsoID string) (saved.Record, error) {
	concorsoID = strings.TrimSpace(concorsoID)
	if userID == uuid.Nil || concorsoID == "" {
		return saved.Record{}, ErrInvalidInput
	}

	if _, err := u.concorsi.GetByID(ctx, concorsoID); err != nil {
		if errors.Is(err, concorso.ErrNotFound) {
			return saved.Record{}, ErrNotFound
		}
		return saved.Record{}, ErrInternal
	}

	rec := saved.Record{ID: uuid.New(), UserID: userID, ConcorsoID: concorsoID, CreatedAt: u.now().UTC()}
	created, err := u.repo.Save(ctx, rec)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Saved] Save failed user_id=%s concorso_id=%s err=%v", userID, concorsoID, err)
		}
		return saved.Record{}, ErrInternal
	}
	if !created && u.logger != nil {
		u.logger.Printf("[Saved] Already saved user_id=%s concorso_id=%s", userID, concorsoID)
	}
	return rec, nil
}

func (u *Saved) Unsave(ctx context.Context, userID uuid.UUID, concorsoID string) error {
	concorsoID = strings.TrimSpace(concorsoID)
	if userID == uuid.Nil || concorsoID == "" {
		return ErrInvalidInput
	}
	if err := u.repo.Delete(ctx, userID, concorsoID); err != nil {
		return ErrInternal
	}
	return nil
}

func (u *Saved) List(ctx context.Context, userID uuid.UUID) ([]SavedItem, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	recs, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ConcorsoID)
	}
	byID, err := u.concorsi.GetByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]SavedItem, 0, len(recs))
	for _, r := range recs {
		c, ok := byID[r.ConcorsoID]
		if !ok {
			out = append(out, SavedItem{Record: r, Concorso: concorso.Placeholder(r.ConcorsoID), Missing: true})
			continue
		}
		out = append(out, SavedItem{Record: r, Concorso: withSlug(c)})
	}
	return out, nil
}

func (u *Saved) IsSaved(ctx context.Context, userID uuid.UUID, concorsoID string) (bool, error) {
	concorsoID = strings.TrimSpace(concorsoID)
	if userID == uuid.Nil || concorsoID == "" {
		return false, ErrInvalidInput
	}
	ok, err := u.repo.Exists(ctx, userID, concorsoID)
	if err != nil {
		return false, ErrInternal
	}
	return ok, nil
}
