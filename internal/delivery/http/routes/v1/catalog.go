package v1

import "github.com/gofiber/fiber/v3"

// RegisterCatalog mounts the public browse, blog and SEO endpoints.
func RegisterCatalog(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Concorsi != nil {
		h.Concorsi.RegisterRoutes(r.Group("/concorsi"))
	}
	if h.Enti != nil {
		h.Enti.RegisterRoutes(r.Group("/enti"))
	}
	if h.Regioni != nil {
		h.Regioni.RegisterRoutes(r.Group("/regioni"))
	}
	if h.Articoli != nil {
		h.Articoli.RegisterRoutes(r.Group("/articoli"))
	}
	if h.SEO != nil {
		h.SEO.RegisterRoutes(r.Group("/seo"))
	}
	if h.Favicons != nil {
		h.Favicons.RegisterRoutes(r.Group("/favicons"))
	}
}
