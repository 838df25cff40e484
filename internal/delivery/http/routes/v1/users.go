package v1

import "github.com/gofiber/fiber/v3"

// RegisterUsers mounts the per-user endpoints on an authenticated router.
func RegisterUsers(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Profile != nil {
		h.Profile.RegisterRoutes(r)
	}
	if h.Saved != nil {
		h.Saved.RegisterRoutes(r)
	}
	if h.Notifications != nil {
		h.Notifications.RegisterRoutes(r)
	}
}
