// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers GET and PUT /profile behind auth.RequireUser.
func MountRoutes(r chi.Router, h *Handler) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Get("/profile", h.ServeProfile)
		pr.Put("/profile", h.HandleUpdateProfile)
	})
}
