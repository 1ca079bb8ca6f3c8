// internal/app/features/groups/manage.go
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

type joinResponse struct {
	Outcome membership.JoinOutcome `json:"outcome"`
}

// HandleJoin handles POST /groups/{id}/join. A public group answers 200
// "joined"; a private group queues the request and answers 202
// "request_pending".
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Groups.RequestOrJoin(ctx, u, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	status := http.StatusOK
	if out == membership.RequestPending {
		status = http.StatusAccepted
	}
	uierrors.WriteJSON(w, status, joinResponse{Outcome: out})
}

// HandleLeave handles POST /groups/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.Leave(ctx, u, chi.URLParam(r, "id")); err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApprove handles POST /groups/{id}/requests/{userID}/approve (owner only).
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Approve(ctx, u, chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

// HandleReject handles POST /groups/{id}/requests/{userID}/reject (owner only).
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Reject(ctx, u, chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}
