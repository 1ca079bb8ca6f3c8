// Package auth identifies the caller of a request. The membership and RSVP
// cores only ever see a User{ID, Email}; how it was established (signed
// cookie or bearer token) stays here.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/studycircle/internal/app/system/apperr"
)

// ErrUnauthenticated is returned by a Provider when the request carries no
// valid identity.
var ErrUnauthenticated = errors.New("auth: no authenticated user")

// User is the authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider resolves the caller of a request.
type Provider interface {
	CurrentUser(r *http.Request) (User, error)
}

// UserFetcher confirms that an identity still maps to a live account and
// returns its current email.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (email string, ok bool)
}

// Chain tries each provider in order; the first that authenticates wins.
type Chain []Provider

func (c Chain) CurrentUser(r *http.Request) (User, error) {
	for _, p := range c {
		u, err := p.CurrentUser(r)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return User{}, err
		}
	}
	return User{}, ErrUnauthenticated
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user loaded by LoadUser & a "found?" flag.
func CurrentUser(r *http.Request) (User, bool) {
	u, ok := r.Context().Value(currentUserKey).(User)
	return u, ok
}

// WithUser returns r carrying u as the authenticated caller.
func WithUser(r *http.Request, u User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadUser resolves the caller once per request and stores it in the
// context. Anonymous requests pass through unchanged.
func LoadUser(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := p.CurrentUser(r); err == nil {
				r = WithUser(r, u)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests without a caller with a 401 JSON error.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   string(apperr.KindUnauthenticated),
			"message": "Sign in to continue.",
		})
	})
}
