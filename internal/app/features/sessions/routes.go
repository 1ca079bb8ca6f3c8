// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /sessions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/{id}", h.ServeSession)
		pr.Put("/{id}/rsvp", h.HandleSetRSVP)
		pr.Delete("/{id}", h.HandleCancelSession)
	})
	return r
}
