package handler

import (
	"concoro/internal/delivery/http/dto"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ArticoliHandler struct {
	uc      usecase.ArticoloUsecase
	present *Presenter
}

func NewArticoliHandler(uc usecase.ArticoloUsecase, present *Presenter) *ArticoliHandler {
	return &ArticoliHandler{uc: uc, present: present}
}

func (h *ArticoliHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/tags", h.Tags)
	r.Get("/:slug", h.Get)
}

func (h *ArticoliHandler) List(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return badRequest(err)
	}
	limit, err := parseQueryIntStrict(c, "limit", 12)
	if err != nil {
		return badRequest(err)
	}

	res, err := h.uc.List(c.Context(), c.Query("tag"), page, limit)
	if err != nil {
		return mapUsecaseError(err, "Articolo not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK,
		pageOf(h.present.Articoli(res.Items), res.Total, res.Page, res.Limit, res.TotalPages, res.HasMore))
}

func (h *ArticoliHandler) Get(c fiber.Ctx) error {
	detail, err := h.uc.Get(c.Context(), c.Params("slug"))
	if err != nil {
		return mapUsecaseError(err, "Articolo not found")
	}

	out := dto.ArticoloDetailResponse{ArticoloResponse: h.present.Articolo(detail.Articolo, true)}
	if detail.Concorso != nil {
		cr := h.present.Concorso(*detail.Concorso, false)
		out.Concorso = &cr
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ArticoliHandler) Tags(c fiber.Ctx) error {
	tags, err := h.uc.Tags(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Tag not found")
	}

	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{Tag: t.Tag, Count: t.Count})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
