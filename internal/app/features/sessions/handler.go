// internal/app/features/sessions/handler.go
package sessions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/services/rsvp"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves study sessions and RSVPs.
type Handler struct {
	Sessions *rsvp.Manager
	Log      *zap.Logger
}

func NewHandler(sessions *rsvp.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Log:      logger,
	}
}

type sessionList struct {
	Sessions []models.StudySession `json:"sessions"`
}

type rsvpRequest struct {
	Status models.RSVPStatus `json:"status"`
}

// ServeGroupSessions handles GET /groups/{id}/sessions.
func (h *Handler) ServeGroupSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ss, err := h.Sessions.ListSessions(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sessionList{Sessions: ss})
}

// HandleCreateSession handles POST /groups/{id}/sessions (members only).
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in rsvp.SessionInput
	if err := uierrors.DecodeJSON(w, r, &in); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Sessions.CreateSession(ctx, u, chi.URLParam(r, "id"), in)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+s.ID)
	uierrors.WriteJSON(w, http.StatusCreated, s)
}

// ServeSession handles GET /sessions/{id}.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Sessions.GetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, s)
}

// HandleSetRSVP handles PUT /sessions/{id}/rsvp with {"status": "..."}.
func (h *Handler) HandleSetRSVP(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req rsvpRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Sessions.SetRsvp(ctx, u, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, s)
}

// HandleCancelSession handles DELETE /sessions/{id} (creator only).
func (h *Handler) HandleCancelSession(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Sessions.CancelSession(ctx, u, chi.URLParam(r, "id")); err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
