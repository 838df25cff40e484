package user

import (
	"context"
	"errors"
	"strings"

	"concoro/internal/domain/user"
	"concoro/internal/location"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("profile not found")
	ErrInternal     = errors.New("internal error")
)

const (
	maxListEntries = 30
	maxEntryLength = 80
)

// UpdateProfileInput is a partial update: nil fields keep the stored value.
type UpdateProfileInput struct {
	Nome            *string
	Cognome         *string
	Regioni         *[]string
	Settori         *[]string
	Keywords        *[]string
	NotifyEmail     *bool
	NotifyDeadlines *bool
	NotifyMatches   *bool
}

type Service struct {
	users    user.Repository
	profiles user.ProfileRepository
}

func NewService(users user.Repository, profiles user.ProfileRepository) *Service {
	return &Service{users: users, profiles: profiles}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.Profile{}, ErrInternal
	}

	// accounts created before profiles existed get the defaults lazily
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, ErrNotFound
		}
		return user.Profile{}, ErrInternal
	}
	p = user.DefaultProfile(u.ID, u.Email)
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return user.Profile{}, ErrInternal
	}
	return s.reload(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (user.Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return user.Profile{}, err
	}

	if in.Nome != nil {
		p.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Cognome != nil {
		p.Cognome = strings.TrimSpace(*in.Cognome)
	}
	if in.Regioni != nil {
		regioni, err := NormalizeRegioni(*in.Regioni)
		if err != nil {
			return user.Profile{}, err
		}
		p.Regioni = regioni
	}
	if in.Settori != nil {
		settori, err := cleanList(*in.Settori)
		if err != nil {
			return user.Profile{}, err
		}
		p.Settori = settori
	}
	if in.Keywords != nil {
		keywords, err := cleanList(*in.Keywords)
		if err != nil {
			return user.Profile{}, err
		}
		p.Keywords = keywords
	}
	if in.NotifyEmail != nil {
		p.NotifyEmail = *in.NotifyEmail
	}
	if in.NotifyDeadlines != nil {
		p.NotifyDeadlines = *in.NotifyDeadlines
	}
	if in.NotifyMatches != nil {
		p.NotifyMatches = *in.NotifyMatches
	}

	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, ErrNotFound
		}
		return user.Profile{}, ErrInternal
	}
	return s.reload(ctx, userID)
}

func (s *Service) reload(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Profile{}, ErrNotFound
		}
		return user.Profile{}, ErrInternal
	}
	return p, nil
}

// NormalizeRegioni maps names, aliases or provinces to region slugs,
// dropping duplicates and keeping the input order.
func NormalizeRegioni(in []string) ([]string, error) {
	if len(in) > maxListEntries {
		return nil, ErrInvalidInput
	}
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		r, ok := location.ResolveRegion(raw)
		if !ok {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[r.Slug]; dup {
			continue
		}
		seen[r.Slug] = struct{}{}
		out = append(out, r.Slug)
	}
	return out, nil
}

func cleanList(in []string) ([]string, error) {
	if len(in) > maxListEntries {
		return nil, ErrInvalidInput
	}
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		v := strings.Join(strings.Fields(raw), " ")
		if v == "" {
			continue
		}
		if len(v) > maxEntryLength {
			return nil, ErrInvalidInput
		}
		k := strings.ToLower(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
