package userstore

import (
	"context"

	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
)

// Fetcher confirms that an identity carried by a cookie or token still maps
// to a live account. The identity providers call it on every request.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a Fetcher over the given user store.
func NewFetcher(s *Store) *Fetcher {
	return &Fetcher{store: s}
}

// FetchUser returns the account's current email, or ok=false if the account
// no longer exists or the lookup fails.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) (email string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.store.GetByID(ctx, userID)
	if err != nil {
		return "", false
	}
	return u.Email, true
}
