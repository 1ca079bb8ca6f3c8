// internal/app/features/groups/groupedit.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/services/membership"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleEditGroup handles PUT /groups/{id} (owner only). The body replaces
// every descriptive field, max_members and private; omitted fields are
// cleared, not kept.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in membership.GroupInput
	if err := uierrors.DecodeJSON(w, r, &in); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.EditGroup(ctx, u, chi.URLParam(r, "id"), in)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}
