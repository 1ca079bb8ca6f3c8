// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/services/membership"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
)

// HandleCreateGroup handles POST /groups. The caller becomes the owner and
// first member.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in membership.GroupInput
	if err := uierrors.DecodeJSON(w, r, &in); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.CreateGroup(ctx, u, in)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Location", "/groups/"+g.ID)
	uierrors.WriteJSON(w, http.StatusCreated, g)
}
