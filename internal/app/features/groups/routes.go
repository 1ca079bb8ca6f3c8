// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/studycircle/internal/app/features/sessions"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /groups. The group-scoped session endpoints
// (list and create) are served by the sessions handler.
func Routes(h *Handler, sh *sessions.Handler) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		// LIST
		pr.Get("/", h.ServeGroupsList)
		pr.Get("/mine", h.ServeMyGroups)

		// CREATE
		pr.Post("/", h.HandleCreateGroup)

		// VIEW / EDIT / DELETE
		pr.Get("/{id}", h.ServeGroupView)
		pr.Put("/{id}", h.HandleEditGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// MEMBERSHIP
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Post("/{id}/requests/{userID}/approve", h.HandleApprove)
		pr.Post("/{id}/requests/{userID}/reject", h.HandleReject)

		// ACTIVITY (owner)
		pr.Get("/{id}/activity", h.ServeActivity)

		// SESSIONS
		pr.Get("/{id}/sessions", sh.ServeGroupSessions)
		pr.Post("/{id}/sessions", sh.HandleCreateSession)
	})

	return r
}
