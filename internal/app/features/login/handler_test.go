package login_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studycircle/internal/app/features/login"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	userstore "github.com/dalemusser/studycircle/internal/app/store/users"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"github.com/dalemusser/studycircle/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testKey = "0123456789abcdef0123456789abcdef"

type fixture struct {
	h        *login.Handler
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
}

func newFixture(t *testing.T, limiter *ratelimit.LoginLimiter) fixture {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(testKey, "", "", time.Hour, false, nil, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	tm, err := auth.NewTokenManager(testKey, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	h := login.NewHandler(userstore.New(docstore.NewMemory()), sm, tm, limiter, nil, logger)
	h.BcryptCost = bcrypt.MinCost
	return fixture{h: h, sessions: sm, tokens: tm}
}

type authBody struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

func (f fixture) register(t *testing.T, email, password string) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	f.h.HandleRegister(rec, testutil.NewJSONRequest("POST", "/auth/register",
		map[string]string{"email": email, "password": password, "name": "Test User"}))
	return rec
}

func (f fixture) login(t *testing.T, email, password string) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	f.h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/auth/login",
		map[string]string{"email": email, "password": password}))
	return rec
}

func TestRegister_SignsIn(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.register(t, "  Ada@Example.com ", "correct horse")
	rec.AssertStatus(t, http.StatusCreated)

	var body authBody
	rec.DecodeJSON(t, &body)
	if body.User.ID == "" || body.User.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", body.User)
	}
	if body.Token == "" {
		t.Fatal("expected a bearer token")
	}

	claims, err := f.tokens.Verify(body.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != body.User.ID {
		t.Errorf("token uid: got %q, want %q", claims.UserID, body.User.ID)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	req := testutil.NewRequest("GET", "/")
	req.AddCookie(cookies[0])
	u, err := f.sessions.CurrentUser(req)
	if err != nil || u.ID != body.User.ID {
		t.Errorf("session user: got %+v, %v", u, err)
	}
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "taken@example.com", "password1").AssertStatus(t, http.StatusCreated)

	tests := []struct {
		name   string
		email  string
		pw     string
		status int
		kind   string
	}{
		{"bad email", "not-an-email", "password1", http.StatusBadRequest, "validation"},
		{"short password", "new@example.com", "short", http.StatusBadRequest, "validation"},
		{"long password", "new@example.com", strings.Repeat("x", 73), http.StatusBadRequest, "validation"},
		{"duplicate", "TAKEN@example.com", "password1", http.StatusConflict, "conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.register(t, tt.email, tt.pw)
			rec.AssertStatus(t, tt.status)
			rec.AssertErrorKind(t, tt.kind)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "grace@example.com", "hopper1906").AssertStatus(t, http.StatusCreated)

	rec := f.login(t, "Grace@Example.com", "hopper1906")
	rec.AssertStatus(t, http.StatusOK)
	var body authBody
	rec.DecodeJSON(t, &body)
	if body.User.Email != "grace@example.com" || body.Token == "" {
		t.Errorf("unexpected login body: %+v", body)
	}

	tests := []struct {
		name   string
		email  string
		pw     string
		status int
	}{
		{"wrong password", "grace@example.com", "nope-nope", http.StatusUnauthorized},
		{"unknown user", "nobody@example.com", "hopper1906", http.StatusUnauthorized},
		{"missing password", "grace@example.com", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.login(t, tt.email, tt.pw).AssertStatus(t, tt.status)
		})
	}
}

func TestLogin_SameMessageForUnknownAndWrongPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "grace@example.com", "hopper1906").AssertStatus(t, http.StatusCreated)

	a := f.login(t, "grace@example.com", "wrong-password").Body.String()
	b := f.login(t, "nobody@example.com", "wrong-password").Body.String()
	if a != b {
		t.Errorf("responses differ:\n%s\n%s", a, b)
	}
}

func TestLogin_Malformed(t *testing.T) {
	f := newFixture(t, nil)
	for _, body := range []string{`{`, `{"email":"a@b.c","password":"x","extra":1}`, `{"email":"a@b.c"}{}`} {
		rec := testutil.NewRecorder()
		f.h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/auth/login", body))
		rec.AssertStatus(t, http.StatusUnprocessableEntity)
		rec.AssertErrorKind(t, "malformed_request")
	}
}

func TestLogin_Throttled(t *testing.T) {
	limiter := ratelimit.NewMemoryLoginLimiter(100, 2)
	defer limiter.Stop()
	f := newFixture(t, limiter)

	for i := 0; i < 2; i++ {
		f.login(t, "victim@example.com", "guess-guess").AssertStatus(t, http.StatusUnauthorized)
	}
	rec := f.login(t, "victim@example.com", "guess-guess")
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertErrorKind(t, "too_many_requests")

	// Other accounts are unaffected.
	f.login(t, "other@example.com", "guess-guess").AssertStatus(t, http.StatusUnauthorized)
}
