// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/studycircle/internal/app/system/auth"
)

// Handler serves the caller's identity.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo returns JSON with the caller's authentication status and identity.
//
// Response format:
//
//	{ "isAuthenticated": bool, "id": "...", "email": "..." }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := auth.CurrentUser(r)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": ok,
		"id":              user.ID,
		"email":           user.Email,
	})
}
