package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"concoro/internal/domain/articolo"
	"concoro/internal/domain/concorso"
	"concoro/internal/repository"
)

type ArticoloPage struct {
	Items      []articolo.Articolo
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasMore    bool
}

// ArticoloDetail carries the linked concorso when it still exists.
type ArticoloDetail struct {
	Articolo articolo.Articolo
	Concorso *concorso.Concorso
}

type ArticoloUsecase interface {
	List(ctx context.Context, tag string, page, limit int) (ArticoloPage, error)
	Get(ctx context.Context, slug string) (ArticoloDetail, error)
	ForConcorso(ctx context.Context, concorsoID string, limit int) ([]articolo.Articolo, error)
	Tags(ctx context.Context) ([]articolo.TagCount, error)
}

type Articoli struct {
	repo     repository.ArticoloRepository
	concorsi repository.ConcorsoRepository
	cache    Cache
	logger   *log.Logger
}

func NewArticoloUsecase(repo repository.ArticoloRepository, concorsi repository.ConcorsoRepository, cache Cache, logger *log.Logger) *Articoli {
	return &Articoli{repo: repo, concorsi: concorsi, cache: cache, logger: logger}
}

func (u *Articoli) List(ctx context.Context, tag string, page, limit int) (ArticoloPage, error) {
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 0 || limit > maxPageLimit {
		return ArticoloPage{}, ErrInvalidInput
	}
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return ArticoloPage{}, ErrInvalidInput
	}
	tag = strings.TrimSpace(tag)

	key := fmt.Sprintf("%s%s:%d:%d", articoliListPrefix, strings.ToLower(tag), page, limit)
	out, err := loadCached(ctx, u.cache, key, listCacheTTL, func(ctx context.Context) (ArticoloPage, error) {
		items, total, err := u.repo.List(ctx, tag, limit, (page-1)*limit)
		if err != nil {
			return ArticoloPage{}, err
		}
		return ArticoloPage{
			Items:      items,
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
			HasMore:    page*limit < total,
		}, nil
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Articoli] List failed tag=%s err=%v", tag, err)
		}
		return ArticoloPage{}, ErrInternal
	}
	return out, nil
}

func (u *Articoli) Get(ctx context.Context, slug string) (ArticoloDetail, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return ArticoloDetail{}, ErrInvalidInput
	}

	a, err := loadCached(ctx, u.cache, articoliDetailPrefix+slug, detailCacheTTL, func(ctx context.Context) (articolo.Articolo, error) {
		return u.repo.GetBySlug(ctx, slug)
	})
	if err != nil {
		if errors.Is(err, articolo.ErrNotFound) {
			return ArticoloDetail{}, ErrNotFound
		}
		if u.logger != nil {
			u.logger.Printf("[Articoli] Get failed slug=%s err=%v", slug, err)
		}
		return ArticoloDetail{}, ErrInternal
	}

	out := ArticoloDetail{Articolo: a}
	if a.ConcorsoID != nil && u.concorsi != nil {
		c, err := u.concorsi.GetByID(ctx, *a.ConcorsoID)
		switch {
		case err == nil:
			c = withSlug(c)
			out.Concorso = &c
		case !errors.Is(err, concorso.ErrNotFound) && u.logger != nil:
			u.logger.Printf("[Articoli] Linked concorso lookup failed id=%s err=%v", *a.ConcorsoID, err)
		}
	}
	return out, nil
}

func (u *Articoli) ForConcorso(ctx context.Context, concorsoID string, limit int) ([]articolo.Articolo, error) {
	concorsoID = strings.TrimSpace(concorsoID)
	if concorsoID == "" {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = 5
	}
	if limit < 0 || limit > maxPageLimit {
		return nil, ErrInvalidInput
	}
	items, err := u.repo.ListByConcorso(ctx, concorsoID, limit)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Articoli] ForConcorso failed id=%s err=%v", concorsoID, err)
		}
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Articoli) Tags(ctx context.Context) ([]articolo.TagCount, error) {
	tags, err := loadCached(ctx, u.cache, articoliTagsKey, indexCacheTTL, u.repo.ListTags)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Articoli] Tags failed err=%v", err)
		}
		return nil, ErrInternal
	}
	return tags, nil
}
