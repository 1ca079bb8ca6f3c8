// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes registers POST /login and POST /register on r, which is
// expected to be the /auth subrouter.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.HandleLogin)
	r.Post("/register", h.HandleRegister)
}
