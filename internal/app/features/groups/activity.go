// internal/app/features/groups/activity.go
package groups

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxActivity = 200

type activityResponse struct {
	Events []audit.Event `json:"events"`
}

// ServeActivity handles GET /groups/{id}/activity: the group's recent
// membership events, newest first. Owner only. ?limit caps the count.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.GetGroup(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	if g.OwnerID != u.ID {
		uierrors.WriteError(w, r, h.Log, apperr.Unauthorized("only the group owner can view its activity"))
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			uierrors.WriteError(w, r, h.Log, apperr.Validation("limit must be a positive number"))
			return
		}
		limit = min(n, maxActivity)
	}

	events := []audit.Event{}
	if h.Audit != nil {
		events, err = h.Audit.ForGroup(ctx, g.ID, limit)
		if err != nil {
			h.Log.Error("load group activity", zap.String("group_id", g.ID), zap.Error(err))
			uierrors.WriteError(w, r, h.Log, apperr.Store("load activity", err))
			return
		}
	}
	uierrors.WriteJSON(w, http.StatusOK, activityResponse{Events: events})
}
