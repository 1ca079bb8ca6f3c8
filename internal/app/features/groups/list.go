// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/studycircle/internal/domain/models"
)

type groupList struct {
	Groups []models.Group `json:"groups"`
}

// ServeGroupsList handles GET /groups (every group, ordered by name).
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gs, err := h.Groups.ListGroups(ctx)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, groupList{Groups: gs})
}

// ServeMyGroups handles GET /groups/mine (groups the caller belongs to).
func (h *Handler) ServeMyGroups(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	gs, err := h.Groups.ListGroupsForMember(ctx, u)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, groupList{Groups: gs})
}
