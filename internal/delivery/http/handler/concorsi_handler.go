package handler

import (
	"concoro/internal/delivery/http/dto"
	"concoro/internal/pkg/response"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const concorsoNotFound = "Concorso not found"

type ConcorsiHandler struct {
	uc       usecase.ConcorsoUsecase
	articoli usecase.ArticoloUsecase
	present  *Presenter
}

func NewConcorsiHandler(uc usecase.ConcorsoUsecase, articoli usecase.ArticoloUsecase, present *Presenter) *ConcorsiHandler {
	return &ConcorsiHandler{uc: uc, articoli: articoli, present: present}
}

func (h *ConcorsiHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:id/related", h.Related)
	r.Get("/:id/articoli", h.Articoli)
	r.Get("/:idOrSlug", h.Get)
}

func (h *ConcorsiHandler) List(c fiber.Ctx) error {
	params, err := listParamsFromQuery(c, h.present.Loc)
	if err != nil {
		return err
	}

	page, err := h.uc.List(c.Context(), params)
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.page(page))
}

func (h *ConcorsiHandler) Get(c fiber.Ctx) error {
	item, err := h.uc.Get(c.Context(), c.Params("idOrSlug"))
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.present.Concorso(item, true))
}

func (h *ConcorsiHandler) Related(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 6)
	if err != nil {
		return badRequest(err)
	}

	items, err := h.uc.Related(c.Context(), c.Params("id"), limit)
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.present.Concorsi(items))
}

func (h *ConcorsiHandler) Articoli(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 5)
	if err != nil {
		return badRequest(err)
	}

	items, err := h.articoli.ForConcorso(c.Context(), c.Params("id"), limit)
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.present.Articoli(items))
}

func (h *ConcorsiHandler) page(p usecase.ConcorsoPage) dto.PageResponse[dto.ConcorsoResponse] {
	res := pageOf(h.present.Concorsi(p.Items), p.Total, p.Page, p.Limit, p.TotalPages, p.HasMore)
	res.Truncated = p.Truncated
	return res
}

// EntiHandler serves the organization index and per-organization listings.
type EntiHandler struct {
	concorsi *ConcorsiHandler
}

func NewEntiHandler(concorsi *ConcorsiHandler) *EntiHandler {
	return &EntiHandler{concorsi: concorsi}
}

func (h *EntiHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:slug/concorsi", h.Concorsi)
}

func (h *EntiHandler) List(c fiber.Ctx) error {
	enti, err := h.concorsi.uc.ListEnti(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Ente not found")
	}

	out := make([]dto.EnteResponse, 0, len(enti))
	for _, e := range enti {
		out = append(out, dto.EnteResponse{Name: e.Name, Slug: e.Slug, Count: e.Count})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *EntiHandler) Concorsi(c fiber.Ctx) error {
	params, err := listParamsFromQuery(c, h.concorsi.present.Loc)
	if err != nil {
		return err
	}

	page, err := h.concorsi.uc.ConcorsiByEnte(c.Context(), c.Params("slug"), params)
	if err != nil {
		return mapUsecaseError(err, "Ente not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.concorsi.page(page))
}

// RegioniHandler serves the region index and per-region listings.
type RegioniHandler struct {
	concorsi *ConcorsiHandler
}

func NewRegioniHandler(concorsi *ConcorsiHandler) *RegioniHandler {
	return &RegioniHandler{concorsi: concorsi}
}

func (h *RegioniHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:slug/concorsi", h.Concorsi)
}

func (h *RegioniHandler) List(c fiber.Ctx) error {
	regioni, err := h.concorsi.uc.ListRegioni(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Regione not found")
	}

	out := make([]dto.RegioneResponse, 0, len(regioni))
	for _, r := range regioni {
		out = append(out, dto.RegioneResponse{Slug: r.Slug, Name: r.Name, Count: r.Count})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *RegioniHandler) Concorsi(c fiber.Ctx) error {
	params, err := listParamsFromQuery(c, h.concorsi.present.Loc)
	if err != nil {
		return err
	}

	page, err := h.concorsi.uc.ConcorsiByRegione(c.Context(), c.Params("slug"), params)
	if err != nil {
		return mapUsecaseError(err, "Regione not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.concorsi.page(page))
}

