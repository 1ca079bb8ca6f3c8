// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
)

// Handler serves the router-level fallbacks as JSON errors.
// No store needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, errorBody{
		Error:   "not_found",
		Message: "No such endpoint.",
	})
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, errorBody{
		Error:   "method_not_allowed",
		Message: "This endpoint does not support " + r.Method + ".",
	})
}
