package handler

import (
	"errors"
	"strconv"

	"concoro/internal/delivery/http/middleware"
	"concoro/internal/pkg/response"
	"concoro/internal/seo"
	"concoro/internal/sitemap"
	"concoro/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SEOHandler struct {
	concorsi usecase.ConcorsoUsecase
	articoli usecase.ArticoloUsecase
	meta     *seo.Builder
	sitemap  *sitemap.Generator
	site     string
}

func NewSEOHandler(concorsi usecase.ConcorsoUsecase, articoli usecase.ArticoloUsecase, meta *seo.Builder, gen *sitemap.Generator, site string) *SEOHandler {
	return &SEOHandler{concorsi: concorsi, articoli: articoli, meta: meta, sitemap: gen, site: site}
}

// RegisterRoutes mounts the metadata endpoints under the API router.
func (h *SEOHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/concorsi/:idOrSlug", h.ConcorsoMeta)
	r.Get("/articoli/:slug", h.ArticoloMeta)
}

// RegisterRootRoutes mounts the crawler files at the site root.
func (h *SEOHandler) RegisterRootRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/robots.txt", h.Robots)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/sitemap-:n.xml", h.SitemapChunk)
}

func (h *SEOHandler) ConcorsoMeta(c fiber.Ctx) error {
	item, err := h.concorsi.Get(c.Context(), c.Params("idOrSlug"))
	if err != nil {
		return mapUsecaseError(err, concorsoNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.meta.ConcorsoMeta(item))
}

func (h *SEOHandler) ArticoloMeta(c fiber.Ctx) error {
	detail, err := h.articoli.Get(c.Context(), c.Params("slug"))
	if err != nil {
		return mapUsecaseError(err, "Articolo not found")
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.meta.ArticoloMeta(detail.Articolo))
}

func (h *SEOHandler) Robots(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.SendString(sitemap.Robots(h.site))
}

func (h *SEOHandler) Sitemap(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(h.sitemap.Sitemap(c.Context()))
}

func (h *SEOHandler) SitemapChunk(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("n"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Sitemap not found", nil, err)
	}

	body, err := h.sitemap.Chunk(c.Context(), n)
	if err != nil {
		if errors.Is(err, sitemap.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Sitemap not found", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(body)
}
