package handler

import (
	"errors"

	"concoro/internal/delivery/http/middleware"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"
	useruc "concoro/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc      usecase.ProfileUsecase
	present *Presenter
}

type updateProfileRequest struct {
	Nome            *string   `json:"nome" validate:"omitempty,max=80"`
	Cognome         *string   `json:"cognome" validate:"omitempty,max=80"`
	Regioni         *[]string `json:"regioni" validate:"omitempty,max=20"`
	Settori         *[]string `json:"settori" validate:"omitempty,max=30"`
	Keywords        *[]string `json:"keywords" validate:"omitempty,max=30"`
	NotifyEmail     *bool     `json:"notify_email"`
	NotifyDeadlines *bool     `json:"notify_deadlines"`
	NotifyMatches   *bool     `json:"notify_matches"`
}

func (r updateProfileRequest) empty() bool {
	return r.Nome == nil && r.Cognome == nil && r.Regioni == nil && r.Settori == nil &&
		r.Keywords == nil && r.NotifyEmail == nil && r.NotifyDeadlines == nil && r.NotifyMatches == nil
}

func NewProfileHandler(uc usecase.ProfileUsecase, present *Presenter) *ProfileHandler {
	return &ProfileHandler{uc: uc, present: present}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/profile", h.GetProfile)
	r.Put("/me/profile", h.UpdateProfile)
}

func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	prof, err := h.uc.GetProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.present.Profile(prof))
}

func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.empty() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, nil)
	}

	prof, err := h.uc.UpdateProfile(c.Context(), userID, useruc.UpdateProfileInput{
		Nome:            req.Nome,
		Cognome:         req.Cognome,
		Regioni:         req.Regioni,
		Settori:         req.Settori,
		Keywords:        req.Keywords,
		NotifyEmail:     req.NotifyEmail,
		NotifyDeadlines: req.NotifyDeadlines,
		NotifyMatches:   req.NotifyMatches,
	})
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.present.Profile(prof))
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, useruc.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	case errors.Is(err, useruc.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
