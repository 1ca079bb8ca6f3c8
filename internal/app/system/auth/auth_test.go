package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/studycircle/internal/app/system/auth"
	jwtx "github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

type fakeFetcher map[string]string

func (f fakeFetcher) FetchUser(_ context.Context, id string) (string, bool) {
	email, ok := f[id]
	return email, ok
}

func newTestSessionManager(t *testing.T, fetcher auth.UserFetcher) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		fetcher,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// signedInRequest round-trips a SignIn cookie onto a new request.
func signedInRequest(t *testing.T, sm *auth.SessionManager, u auth.User) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, httptest.NewRequest("POST", "/login", nil), u); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "x", "", time.Hour, false, nil, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestSessionManager_SignInThenCurrentUser(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	want := auth.User{ID: "u1", Email: "u1@example.com"}

	got, err := sm.CurrentUser(signedInRequest(t, sm, want))
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSessionManager_NoCookie(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	if _, err := sm.CurrentUser(httptest.NewRequest("GET", "/", nil)); err != auth.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSessionManager_TamperedCookie(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})

	if _, err := sm.CurrentUser(req); err != auth.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSessionManager_FetcherRefreshesAndRejects(t *testing.T) {
	fetch := fakeFetcher{"u1": "new@example.com"}
	sm := newTestSessionManager(t, fetch)

	got, err := sm.CurrentUser(signedInRequest(t, sm, auth.User{ID: "u1", Email: "old@example.com"}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("Email: got %q, want new@example.com", got.Email)
	}

	if _, err := sm.CurrentUser(signedInRequest(t, sm, auth.User{ID: "gone"})); err != auth.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated for deleted user, got %v", err)
	}
}

func TestSessionManager_SignOut(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("POST", "/logout", nil)); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestTokenManager_IssueVerify(t *testing.T) {
	tm, err := auth.NewTokenManager("secret-secret", time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	tok, exp, err := tm.Issue(auth.User{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Error("expiry should be in the future")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	u, err := tm.CurrentUser(req)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if u.ID != "u1" || u.Email != "a@b.c" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	tm, _ := auth.NewTokenManager("secret-secret", time.Hour, nil)
	other, _ := auth.NewTokenManager("another-secret", time.Hour, nil)
	foreign, _, _ := other.Issue(auth.User{ID: "u1"})

	expired, _ := jwtx.NewWithClaims(jwtx.SigningMethodHS256, &auth.Claims{
		UserID: "u1",
		RegisteredClaims: jwtx.RegisteredClaims{
			ExpiresAt: jwtx.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret-secret"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage", "Bearer not.a.token"},
		{"other key", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if _, err := tm.CurrentUser(req); err != auth.ErrUnauthenticated {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestChain_FirstProviderWins(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	tm, _ := auth.NewTokenManager("secret-secret", time.Hour, nil)
	tok, _, _ := tm.Issue(auth.User{ID: "token-user"})

	chain := auth.Chain{tm, sm}

	req := signedInRequest(t, sm, auth.User{ID: "cookie-user"})
	u, err := chain.CurrentUser(req)
	if err != nil || u.ID != "cookie-user" {
		t.Errorf("cookie fallback: got %+v, %v", u, err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	u, err = chain.CurrentUser(req)
	if err != nil || u.ID != "token-user" {
		t.Errorf("token first: got %+v, %v", u, err)
	}

	if _, err := chain.CurrentUser(httptest.NewRequest("GET", "/", nil)); err != auth.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireUser(t *testing.T) {
	called := false
	h := auth.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/groups", nil))
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("anonymous: got %d, called=%v", rec.Code, called)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "unauthenticated" {
		t.Errorf("error kind: got %q", body["error"])
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithUser(httptest.NewRequest("GET", "/groups", nil), auth.User{ID: "u"}))
	if rec.Code != http.StatusOK || !called {
		t.Errorf("signed in: got %d, called=%v", rec.Code, called)
	}
}

func TestLoadUser_PopulatesContext(t *testing.T) {
	tm, _ := auth.NewTokenManager("secret-secret", time.Hour, nil)
	tok, _, _ := tm.Issue(auth.User{ID: "u9", Email: "u9@x.y"})

	var seen auth.User
	var ok bool
	h := auth.LoadUser(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || seen.ID != "u9" {
		t.Errorf("got %+v ok=%v", seen, ok)
	}

	ok = false
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if ok {
		t.Error("anonymous request should carry no user")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	if _, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil)); ok {
		t.Error("expected ok to be false when no user in context")
	}
}
