// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// MountRoutes registers POST /logout. Anonymous callers are allowed so a
// stale cookie can always be cleared.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/logout", h.HandleLogout)
}
