package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"concoro/internal/domain/concorso"
	"concoro/internal/location"
	"concoro/internal/pkg/urlcanon"
	"concoro/internal/repository"
	"concoro/internal/search"
)

const (
	SortRecent    = "recent"
	SortDeadline  = "deadline"
	SortRelevance = "relevance"
	SortPosti     = "posti"

	StatoAll = "all"

	defaultPageLimit = 20
	maxPageLimit     = 100

	candidateBatch = repository.DefaultCandidateCap
	maxCandidates  = 20000
)

type ConcorsoListParams struct {
	Query             string
	Location          string
	Regione           string
	Ente              string
	Settore           string
	Tipologia         string
	Stato             string
	ClosingWithinDays *int
	DeadlineFrom      *time.Time
	DeadlineTo        *time.Time
	Sort              string
	Page              int
	Limit             int

	// set by ConcorsiByEnte once the slug is resolved to a stored name
	enteExact string
}

type ConcorsoPage struct {
	Items      []concorso.Concorso
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasMore    bool
	// Truncated is set when the filtered set hit the candidate ceiling.
	Truncated bool
}

type Ente struct {
	Name  string
	Slug  string
	Count int
}

type RegioneCount struct {
	Slug  string
	Name  string
	Count int
}

type ConcorsoUsecase interface {
	List(ctx context.Context, params ConcorsoListParams) (ConcorsoPage, error)
	Get(ctx context.Context, idOrSlug string) (concorso.Concorso, error)
	Related(ctx context.Context, id string, limit int) ([]concorso.Concorso, error)
	ListEnti(ctx context.Context) ([]Ente, error)
	ConcorsiByEnte(ctx context.Context, enteSlug string, params ConcorsoListParams) (ConcorsoPage, error)
	ListRegioni(ctx context.Context) ([]RegioneCount, error)
	ConcorsiByRegione(ctx context.Context, regioneSlug string, params ConcorsoListParams) (ConcorsoPage, error)
}

type Concorsi struct {
	repo   repository.ConcorsoRepository
	cache  Cache
	logger *log.Logger
	now    func() time.Time
}

func NewConcorsoUsecase(repo repository.ConcorsoRepository, cache Cache, logger *log.Logger) *Concorsi {
	return &Concorsi{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (u *Concorsi) List(ctx context.Context, params ConcorsoListParams) (ConcorsoPage, error) {
	p, err := normalizeListParams(params)
	if err != nil {
		return ConcorsoPage{}, err
	}

	key := ConcorsiListCacheKey(p)
	page, err := loadCached(ctx, u.cache, key, listCacheTTL, func(ctx context.Context) (ConcorsoPage, error) {
		if u.logger != nil {
			u.logger.Printf("[Concorsi] Cache MISS: %s", key)
		}
		return u.list(ctx, p)
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Concorsi] List failed err=%v", err)
		}
		return ConcorsoPage{}, ErrInternal
	}
	return page, nil
}

func normalizeListParams(p ConcorsoListParams) (ConcorsoListParams, error) {
	if p.Limit == 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit < 0 || p.Limit > maxPageLimit {
		return p, ErrInvalidInput
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Page < 0 {
		return p, ErrInvalidInput
	}

	p.Stato = strings.ToLower(strings.TrimSpace(p.Stato))
	switch p.Stato {
	case "":
		p.Stato = concorso.StatoOpen
	case concorso.StatoOpen, concorso.StatoClosed, StatoAll:
	default:
		return p, ErrInvalidInput
	}

	p.Query = strings.TrimSpace(p.Query)
	p.Sort = strings.ToLower(strings.TrimSpace(p.Sort))
	switch p.Sort {
	case "":
		if p.Query != "" {
			p.Sort = SortRelevance
		} else {
			p.Sort = SortRecent
		}
	case SortRecent, SortDeadline, SortRelevance, SortPosti:
	default:
		return p, ErrInvalidInput
	}

	if p.ClosingWithinDays != nil && *p.ClosingWithinDays < 0 {
		return p, ErrInvalidInput
	}
	if p.DeadlineFrom != nil && p.DeadlineTo != nil && p.DeadlineFrom.After(*p.DeadlineTo) {
		return p, ErrInvalidInput
	}

	if r := strings.TrimSpace(p.Regione); r != "" {
		region, ok := location.ResolveRegion(r)
		if !ok {
			return p, ErrInvalidInput
		}
		p.Regione = region.Slug
	}
	return p, nil
}

// deadlineWindow intersects the explicit window with the closing-within one.
func deadlineWindow(p ConcorsoListParams, now time.Time) (from, to *time.Time) {
	from, to = p.DeadlineFrom, p.DeadlineTo
	if p.ClosingWithinDays != nil {
		start := now
		end := now.AddDate(0, 0, *p.ClosingWithinDays)
		if from == nil || from.Before(start) {
			from = &start
		}
		if to == nil || to.After(end) {
			to = &end
		}
	}
	return from, to
}

func (u *Concorsi) list(ctx context.Context, p ConcorsoListParams) (ConcorsoPage, error) {
	now := u.now().UTC()

	f := repository.ConcorsoFilter{
		Settore:   p.Settore,
		Tipologia: p.Tipologia,
		Ente:      p.enteExact,
		Now:       now,
		Order:     candidateOrder(p.Sort),
	}
	if p.Stato != StatoAll {
		f.Stato = p.Stato
	}
	f.DeadlineFrom, f.DeadlineTo = deadlineWindow(p, now)
	if f.DeadlineFrom != nil && f.DeadlineTo != nil && f.DeadlineFrom.After(*f.DeadlineTo) {
		return emptyPage(p), nil
	}

	rows, truncated, err := u.candidates(ctx, f)
	if err != nil {
		return ConcorsoPage{}, err
	}
	if truncated && u.logger != nil {
		u.logger.Printf("[Concorsi] Candidate set truncated at %d rows sort=%s", len(rows), p.Sort)
	}

	rows = filterConcorsi(rows, p)

	qctx := search.ProcessQuery(p.Query)
	matched := matchQuery(rows, qctx)
	if len(matched) == 0 && qctx.Normalized != "" {
		fb := search.FallbackFirstWord(qctx.Normalized)
		if fb != "" && fb != qctx.Normalized {
			qctx = search.ProcessQuery(fb)
			matched = matchQuery(rows, qctx)
		}
	}

	sortConcorsi(matched, p.Sort, qctx.Variants, now)
	page := paginate(matched, p)
	page.Truncated = truncated
	return page, nil
}

func candidateOrder(sortMode string) string {
	switch sortMode {
	case SortDeadline:
		return repository.OrderDeadline
	case SortPosti:
		return repository.OrderPosti
	}
	return repository.OrderPublished
}

// candidates pages through the store in the requested order until the set is
// exhausted or maxCandidates rows are loaded.
func (u *Concorsi) candidates(ctx context.Context, f repository.ConcorsoFilter) ([]concorso.Concorso, bool, error) {
	out := make([]concorso.Concorso, 0, candidateBatch)
	f.Cap = candidateBatch
	for {
		f.Offset = len(out)
		batch, err := u.repo.ListCandidates(ctx, f)
		if err != nil {
			return nil, false, err
		}
		out = append(out, batch...)
		if len(batch) < candidateBatch {
			return out, false, nil
		}
		if len(out) >= maxCandidates {
			return out, true, nil
		}
	}
}

func filterConcorsi(rows []concorso.Concorso, p ConcorsoListParams) []concorso.Concorso {
	out := make([]concorso.Concorso, 0, len(rows))
	for _, c := range rows {
		if !location.MatchesLocation(c.AreaGeografica, p.Location) {
			continue
		}
		if p.Regione != "" && !inRegion(c.AreaGeografica, p.Regione) {
			continue
		}
		if !location.MatchesEnte(c.Ente, p.Ente) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func inRegion(area, regionSlug string) bool {
	if location.IsNational(area) {
		return true
	}
	for _, r := range location.RegionsIn(area) {
		if r.Slug == regionSlug {
			return true
		}
	}
	return false
}

func matchQuery(rows []concorso.Concorso, qctx search.QueryContext) []concorso.Concorso {
	if qctx.Normalized == "" {
		return rows
	}
	out := make([]concorso.Concorso, 0, len(rows))
	for _, c := range rows {
		if search.Matches(toSearchItem(c, 0, time.Time{}), qctx) {
			out = append(out, c)
		}
	}
	return out
}

func toSearchItem(c concorso.Concorso, idx int, now time.Time) search.Item {
	return search.Item{
		OriginalIndex:     idx,
		ID:                c.ID,
		Titolo:            c.Titolo,
		Ente:              c.Ente,
		Descrizione:       c.Descrizione,
		AreaGeografica:    c.AreaGeografica,
		Link:              c.Link,
		Open:              now.IsZero() || c.IsOpen(now),
		DataPubblicazione: c.DataPubblicazione,
		DataChiusura:      c.DataChiusura,
	}
}

func sortConcorsi(items []concorso.Concorso, mode string, variants []string, now time.Time) {
	switch mode {
	case SortRelevance:
		rankInput := make([]search.Item, 0, len(items))
		for i := range items {
			rankInput = append(rankInput, toSearchItem(items[i], i, now))
		}
		ranked := search.RankConcorsi(rankInput, variants, now)
		ordered := make([]concorso.Concorso, 0, len(items))
		for _, it := range ranked {
			ordered = append(ordered, items[it.OriginalIndex])
		}
		copy(items, ordered)
	case SortDeadline:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].DataChiusura, items[j].DataChiusura
			switch {
			case a == nil && b == nil:
				return items[i].ID < items[j].ID
			case a == nil:
				return false
			case b == nil:
				return true
			case a.Equal(*b):
				return items[i].ID < items[j].ID
			}
			return a.Before(*b)
		})
	case SortPosti:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].NumeroPosti, items[j].NumeroPosti
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return *a > *b
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].PublishedAt(), items[j].PublishedAt()
			if a.Equal(b) {
				return items[i].ID < items[j].ID
			}
			return a.After(b)
		})
	}
}

func emptyPage(p ConcorsoListParams) ConcorsoPage {
	return ConcorsoPage{Items: []concorso.Concorso{}, Page: p.Page, Limit: p.Limit}
}

func paginate(items []concorso.Concorso, p ConcorsoListParams) ConcorsoPage {
	total := len(items)
	page := emptyPage(p)
	page.Total = total
	page.TotalPages = (total + p.Limit - 1) / p.Limit
	if p.Page > page.TotalPages {
		return page
	}

	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if end > total {
		end = total
	}

	out := make([]concorso.Concorso, 0, end-start)
	for _, c := range items[start:end] {
		out = append(out, withSlug(c))
	}
	page.Items = out
	page.HasMore = end < total
	return page
}

func withSlug(c concorso.Concorso) concorso.Concorso {
	c.Slug = urlcanon.ConcorsoSlug(c.Slug, c.Titolo, c.Ente, c.ID)
	return c
}

func (u *Concorsi) Get(ctx context.Context, idOrSlug string) (concorso.Concorso, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return concorso.Concorso{}, ErrInvalidInput
	}

	c, err := loadCached(ctx, u.cache, concorsoDetailCacheKey(idOrSlug), detailCacheTTL, func(ctx context.Context) (concorso.Concorso, error) {
		return u.lookup(ctx, idOrSlug)
	})
	if err != nil {
		if errors.Is(err, concorso.ErrNotFound) {
			return concorso.Concorso{}, ErrNotFound
		}
		if u.logger != nil {
			u.logger.Printf("[Concorsi] Get failed key=%s err=%v", idOrSlug, err)
		}
		return concorso.Concorso{}, ErrInternal
	}
	return c, nil
}

// lookup tries the id, then the stored slug, then the short id suffix of a
// derived slug.
func (u *Concorsi) lookup(ctx context.Context, idOrSlug string) (concorso.Concorso, error) {
	c, err := u.repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return withSlug(c), nil
	}
	if !errors.Is(err, concorso.ErrNotFound) {
		return concorso.Concorso{}, err
	}

	c, err = u.repo.GetBySlug(ctx, idOrSlug)
	if err == nil {
		return withSlug(c), nil
	}
	if !errors.Is(err, concorso.ErrNotFound) {
		return concorso.Concorso{}, err
	}

	short := urlcanon.IDFromSlug(idOrSlug)
	if short == "" {
		return concorso.Concorso{}, concorso.ErrNotFound
	}
	c, err = u.repo.GetByShortID(ctx, short)
	if err != nil {
		return concorso.Concorso{}, err
	}
	c = withSlug(c)
	if c.Slug != strings.ToLower(idOrSlug) {
		return concorso.Concorso{}, concorso.ErrNotFound
	}
	return c, nil
}

const (
	defaultRelatedLimit = 6
	maxRelatedLimit     = 20
)

// Related lists open concorsi that share the organization, then the sector,
// then a region with the given one.
func (u *Concorsi) Related(ctx context.Context, id string, limit int) ([]concorso.Concorso, error) {
	if limit == 0 {
		limit = defaultRelatedLimit
	}
	if limit < 0 || limit > maxRelatedLimit {
		return nil, ErrInvalidInput
	}

	base, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := concorsiRelatedKey + base.ID
	all, err := loadCached(ctx, u.cache, key, listCacheTTL, func(ctx context.Context) ([]concorso.Concorso, error) {
		now := u.now().UTC()
		rows, err := u.repo.ListCandidates(ctx, repository.ConcorsoFilter{Stato: concorso.StatoOpen, Now: now})
		if err != nil {
			return nil, err
		}
		return rankRelated(base, rows, maxRelatedLimit), nil
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Concorsi] Related failed id=%s err=%v", base.ID, err)
		}
		return nil, ErrInternal
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func rankRelated(base concorso.Concorso, rows []concorso.Concorso, limit int) []concorso.Concorso {
	baseRegions := map[string]struct{}{}
	for _, r := range location.RegionsIn(base.AreaGeografica) {
		baseRegions[r.Slug] = struct{}{}
	}
	baseEnte := location.Normalize(base.Ente)
	baseSettore := location.Normalize(base.Settore)

	type scored struct {
		c     concorso.Concorso
		score int
	}
	cands := make([]scored, 0, len(rows))
	for _, c := range rows {
		if c.ID == base.ID {
			continue
		}
		score := 0
		if baseEnte != "" && location.Normalize(c.Ente) == baseEnte {
			score += 4
		}
		if baseSettore != "" && location.Normalize(c.Settore) == baseSettore {
			score += 2
		}
		for _, r := range location.RegionsIn(c.AreaGeografica) {
			if _, ok := baseRegions[r.Slug]; ok {
				score++
				break
			}
		}
		if score == 0 {
			continue
		}
		cands = append(cands, scored{c: c, score: score})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].c.PublishedAt().After(cands[j].c.PublishedAt())
	})

	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]concorso.Concorso, 0, len(cands))
	for _, s := range cands {
		out = append(out, withSlug(s.c))
	}
	return out
}

func (u *Concorsi) ListEnti(ctx context.Context) ([]Ente, error) {
	enti, err := loadCached(ctx, u.cache, entiListKey, indexCacheTTL, func(ctx context.Context) ([]Ente, error) {
		rows, err := u.repo.ListEnti(ctx, u.now().UTC())
		if err != nil {
			return nil, err
		}
		return groupEnti(rows), nil
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Concorsi] ListEnti failed err=%v", err)
		}
		return nil, ErrInternal
	}
	return enti, nil
}

// groupEnti merges spellings that share a slug, keeping the most used one.
func groupEnti(rows []repository.EnteCount) []Ente {
	bySlug := map[string]int{}
	best := map[string]int{}
	out := make([]Ente, 0, len(rows))
	for _, r := range rows {
		s := urlcanon.EnteSlug(r.Name)
		if s == "" {
			continue
		}
		i, ok := bySlug[s]
		if !ok {
			bySlug[s] = len(out)
			best[s] = r.Count
			out = append(out, Ente{Name: strings.TrimSpace(r.Name), Slug: s, Count: r.Count})
			continue
		}
		out[i].Count += r.Count
		if r.Count > best[s] {
			best[s] = r.Count
			out[i].Name = strings.TrimSpace(r.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (u *Concorsi) ConcorsiByEnte(ctx context.Context, enteSlug string, params ConcorsoListParams) (ConcorsoPage, error) {
	enteSlug = strings.ToLower(strings.TrimSpace(enteSlug))
	if enteSlug == "" {
		return ConcorsoPage{}, ErrInvalidInput
	}
	enti, err := u.ListEnti(ctx)
	if err != nil {
		return ConcorsoPage{}, err
	}
	for _, e := range enti {
		if e.Slug == enteSlug {
			params.enteExact = e.Name
			params.Ente = ""
			return u.List(ctx, params)
		}
	}
	return ConcorsoPage{}, ErrNotFound
}

func (u *Concorsi) ListRegioni(ctx context.Context) ([]RegioneCount, error) {
	out, err := loadCached(ctx, u.cache, regioniListKey, indexCacheTTL, func(ctx context.Context) ([]RegioneCount, error) {
		areas, err := u.repo.ListOpenAreas(ctx, u.now().UTC())
		if err != nil {
			return nil, err
		}
		return countRegioni(areas), nil
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Concorsi] ListRegioni failed err=%v", err)
		}
		return nil, ErrInternal
	}
	return out, nil
}

// countRegioni counts, per region, the areas a region filter would accept.
func countRegioni(areas []string) []RegioneCount {
	regions := location.Regions()
	counts := make(map[string]int, len(regions))
	national := 0
	for _, a := range areas {
		if location.IsNational(a) {
			national++
			continue
		}
		for _, r := range location.RegionsIn(a) {
			counts[r.Slug]++
		}
	}

	out := make([]RegioneCount, 0, len(regions))
	for _, r := range regions {
		out = append(out, RegioneCount{Slug: r.Slug, Name: r.Name, Count: counts[r.Slug] + national})
	}
	return out
}

func (u *Concorsi) ConcorsiByRegione(ctx context.Context, regioneSlug string, params ConcorsoListParams) (ConcorsoPage, error) {
	slug := urlcanon.RegioneSlug(regioneSlug)
	if slug == "" {
		return ConcorsoPage{}, ErrNotFound
	}
	params.Regione = slug
	return u.List(ctx, params)
}
