package usecase

import (
	"context"
	"log"

	"concoro/internal/domain/user"
	"concoro/internal/repository"
	ucuser "concoro/internal/usecase/user"

	"github.com/google/uuid"
)

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ucuser.UpdateProfileInput) (user.Profile, error)
}

type Profile struct {
	svc     *ucuser.Service
	matches repository.MatchRepository
	cache   Cache
	logger  *log.Logger
}

func NewProfileUsecase(users user.Repository, profiles user.ProfileRepository, matches repository.MatchRepository, cache Cache, logger *log.Logger) *Profile {
	return &Profile{svc: ucuser.NewService(users, profiles), matches: matches, cache: cache, logger: logger}
}

func (u *Profile) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	return u.svc.GetProfile(ctx, userID)
}

// UpdateProfile saves the changes and drops the matches computed for the old
// preferences; the next match run scores against the new ones.
func (u *Profile) UpdateProfile(ctx context.Context, userID uuid.UUID, in ucuser.UpdateProfileInput) (user.Profile, error) {
	p, err := u.svc.UpdateProfile(ctx, userID, in)
	if err != nil {
		return user.Profile{}, err
	}
	if in.Regioni != nil || in.Settori != nil || in.Keywords != nil {
		if u.matches != nil {
			if err := u.matches.DeleteByUser(ctx, userID); err != nil && u.logger != nil {
				u.logger.Printf("[Profile] Match reset failed user_id=%s err=%v", userID, err)
			}
		}
	}
	if u.cache != nil {
		_ = u.cache.Delete(ctx, matchesCacheKey(userID.String()))
	}
	return p, nil
}
