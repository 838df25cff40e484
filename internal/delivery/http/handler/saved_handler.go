package handler

import (
	"concoro/internal/delivery/http/dto"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SavedHandler struct {
	uc      usecase.SavedUsecase
	present *Presenter
}

func NewSavedHandler(uc usecase.SavedUsecase, present *Presenter) *SavedHandler {
	return &SavedHandler{uc: uc, present: present}
}

func (h *SavedHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/saved", h.List)
	r.Get("/me/saved/:concorsoId", h.Status)
	r.Post("/me/saved/:concorsoId", h.Save)
	r.Delete("/me/saved/:concorsoId", h.Unsave)
}

func (h *SavedHandler) List(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}

	out := make([]dto.SavedResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SavedResponse{
			ConcorsoID: it.Record.ConcorsoID,
			SavedAt:    it.Record.CreatedAt,
			Missing:    it.Missing,
			Concorso:   h.present.Concorso(it.Concorso, false),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *SavedHandler) Status(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	id := c.Params("concorsoId")
	ok, err := h.uc.IsSaved(c.Context(), userID, id)
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SavedStatusResponse{ConcorsoID: id, Saved: ok})
}

func (h *SavedHandler) Save(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	rec, err := h.uc.Save(c.Context(), userID, c.Params("concorsoId"))
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SavedStatusResponse{ConcorsoID: rec.ConcorsoID, Saved: true})
}

func (h *SavedHandler) Unsave(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	id := c.Params("concorsoId")
	if err := h.uc.Unsave(c.Context(), userID, id); err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SavedStatusResponse{ConcorsoID: id, Saved: false})
}
