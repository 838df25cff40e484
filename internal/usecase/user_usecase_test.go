package usecase

import (
	"context"
	"testing"

	"concoro/internal/domain/notification"
	"concoro/internal/domain/user"
	ucuser "concoro/internal/usecase/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUsecase_GetCreatesDefaults(t *testing.T) {
	users := newFakeUserRepo()
	u := user.User{ID: uuid.New(), Email: "luca@example.com"}
	require.NoError(t, users.CreateUser(context.Background(), u))
	profiles := newFakeProfileRepo()

	uc := NewProfileUsecase(users, profiles, &fakeMatchRepo{}, nil, nil)
	p, err := uc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "luca@example.com", p.Email)
	assert.True(t, p.NotifyEmail)

	_, err = uc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ucuser.ErrNotFound)
}

func TestProfileUsecase_UpdateResetsMatches(t *testing.T) {
	users := newFakeUserRepo()
	p := user.DefaultProfile(uuid.New(), "sara@example.com")
	profiles := newFakeProfileRepo(p)
	matches := &fakeMatchRepo{items: []notification.Match{{UserID: p.UserID, ConcorsoID: "c1", Score: 70}}}
	uc := NewProfileUsecase(users, profiles, matches, nil, nil)

	nome := "Sara"
	got, err := uc.UpdateProfile(context.Background(), p.UserID, ucuser.UpdateProfileInput{Nome: &nome})
	require.NoError(t, err)
	assert.Equal(t, "Sara", got.Nome)
	assert.Len(t, matches.items, 1, "name change keeps matches")

	regioni := []string{"Milano", "lombardia", "Sicily"}
	off := false
	got, err = uc.UpdateProfile(context.Background(), p.UserID, ucuser.UpdateProfileInput{Regioni: &regioni, NotifyMatches: &off})
	require.NoError(t, err)
	assert.Equal(t, []string{"lombardia", "sicilia"}, got.Regioni)
	assert.False(t, got.NotifyMatches)
	assert.Empty(t, matches.items)
	assert.Equal(t, []uuid.UUID{p.UserID}, matches.deleted)

	bad := []string{"Atlantide"}
	_, err = uc.UpdateProfile(context.Background(), p.UserID, ucuser.UpdateProfileInput{Regioni: &bad})
	assert.ErrorIs(t, err, ucuser.ErrInvalidInput)
}
