// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrMalformed is returned by DecodeJSON when the body is not valid JSON for
// the target type.
var ErrMalformed = errors.New("malformed JSON body")

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its status and writes {"error", "message"}.
// Store failures are logged; their cause is never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindStore && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	WriteJSON(w, apperr.HTTPStatus(kind), errorBody{
		Error:   string(kind),
		Message: apperr.Message(err),
	})
}

// WriteMalformed answers a body that could not be decoded.
func WriteMalformed(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "The request body is not valid JSON."
	}
	WriteJSON(w, http.StatusUnprocessableEntity, errorBody{
		Error:   "malformed_request",
		Message: msg,
	})
}

// WriteTooManyRequests answers a throttled request.
func WriteTooManyRequests(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusTooManyRequests, errorBody{
		Error:   "too_many_requests",
		Message: msg,
	})
}

// DecodeJSON reads one JSON object into dst. Unknown fields, trailing data
// and bodies over limits.MaxJSONBodySize are rejected with ErrMalformed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return DecodeJSONLimit(w, r, dst, limits.MaxJSONBodySize)
}

// DecodeJSONLimit is DecodeJSON with an explicit size limit.
func DecodeJSONLimit(w http.ResponseWriter, r *http.Request, dst any, max int64) error {
	if r.Body == nil {
		return ErrMalformed
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, max))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrMalformed
	}
	return nil
}
