// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeGroupView handles GET /groups/{id}.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.GetGroup(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}
