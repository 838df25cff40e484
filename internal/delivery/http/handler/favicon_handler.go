package handler

import (
	"concoro/internal/delivery/http/dto"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type FaviconHandler struct {
	uc usecase.FaviconUsecase
}

func NewFaviconHandler(uc usecase.FaviconUsecase) *FaviconHandler {
	return &FaviconHandler{uc: uc}
}

func (h *FaviconHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Resolve)
}

// Resolve answers with the icon record, or redirects to the icon itself
// when redirect=true so the endpoint can back an <img src>.
func (h *FaviconHandler) Resolve(c fiber.Ctx) error {
	redirect, err := parseQueryBool(c, "redirect")
	if err != nil {
		return badRequest(err)
	}

	icon, err := h.uc.Resolve(c.Context(), c.Query("domain"))
	if err != nil {
		return mapUsecaseError(err, "Favicon not found")
	}

	if redirect {
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Redirect().Status(fiber.StatusFound).To(icon.IconURL)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FaviconResponse{
		Domain:     icon.Domain,
		IconURL:    icon.IconURL,
		Source:     icon.Source,
		ResolvedAt: icon.ResolvedAt,
	})
}
