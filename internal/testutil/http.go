package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewUser returns an auth.User with a fresh ObjectID hex and the given email.
func NewUser(email string) auth.User {
	return auth.User{ID: primitive.NewObjectID().Hex(), Email: email}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the identity middleware and injects the user directly.
func WithUser(r *http.Request, u auth.User) *http.Request {
	return auth.WithUser(r, u)
}

// WithChiURLParams attaches chi route params so handlers can read them with
// chi.URLParam without going through a router.
func WithChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body marshaled as JSON.
// A string body is sent verbatim, which lets tests send malformed JSON.
func NewJSONRequest(method, target string, body any) *http.Request {
	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	default:
		raw, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with a user in context.
func NewAuthenticatedRequest(method, target string, u auth.User, body any) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), u)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertErrorKind checks the "error" field of a JSON error body.
func (r *ResponseRecorder) AssertErrorKind(t interface{ Errorf(string, ...any) }, kind string) {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("response is not a JSON error: %v", err)
		return
	}
	if body.Error != kind {
		t.Errorf("error kind: got %q, want %q", body.Error, kind)
	}
}

// DecodeJSON unmarshals the response body into out.
func (r *ResponseRecorder) DecodeJSON(t interface {
	Fatalf(string, ...any)
}, out any) {
	if err := json.Unmarshal(r.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
