package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := Validation("max members must be between %d and %d", 3, 10)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation) to hold for %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error must not match ErrNotFound")
	}

	wrapped := fmt.Errorf("approve: %w", ErrGroupFull)
	if !errors.Is(wrapped, ErrGroupFull) {
		t.Error("wrapped sentinel should still match")
	}
}

func TestStore_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("load group", cause)

	if !errors.Is(err, ErrStore) {
		t.Errorf("expected store kind, got %v", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if Store("noop", nil) != nil {
		t.Error("Store(nil) should be nil")
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindStore {
		t.Errorf("KindOf(foreign) = %q, want %q", got, KindStore)
	}
	if got := Message(errors.New("boom")); got != ErrStore.Message {
		t.Errorf("Message(foreign) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindUnauthorized, http.StatusForbidden},
		{KindAlreadyMember, http.StatusConflict},
		{KindRequestPending, http.StatusConflict},
		{KindGroupFull, http.StatusConflict},
		{KindConflict, http.StatusConflict},
		{KindStore, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := HTTPStatus(tt.kind); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}
