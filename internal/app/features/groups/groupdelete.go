// internal/app/features/groups/groupdelete.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleDeleteGroup handles DELETE /groups/{id} (owner only). Sessions of
// the group are left in place.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.DeleteGroup(ctx, u, chi.URLParam(r, "id")); err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
