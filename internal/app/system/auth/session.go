package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionUserID = "user_id"
	sessionEmail  = "email"
)

// SessionManager keeps the caller's identity in a signed cookie.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds a cookie-backed session provider. The `secure`
// flag controls whether cookies are marked Secure and which SameSite mode is
// used: Secure + SameSite=None behind HTTPS, Lax for local http://localhost.
//
// fetcher may be nil, in which case the cookie alone is trusted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, fetcher UserFetcher, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "studycircle-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, fetcher: fetcher, logger: logger}, nil
}

// CurrentUser reads the identity from the session cookie.
func (m *SessionManager) CurrentUser(r *http.Request) (User, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		// A cookie signed with an old key or tampered with is treated as
		// "not signed in", not as a server error.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.logger.Warn("session cookie could not be decoded", zap.Error(err))
			return User{}, ErrUnauthenticated
		}
		return User{}, err
	}

	id := getString(sess, sessionUserID)
	if id == "" {
		return User{}, ErrUnauthenticated
	}
	u := User{ID: id, Email: getString(sess, sessionEmail)}
	if m.fetcher != nil {
		email, ok := m.fetcher.FetchUser(r.Context(), id)
		if !ok {
			return User{}, ErrUnauthenticated
		}
		u.Email = email
	}
	return u, nil
}

// SignIn writes u into a fresh session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u User) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[sessionUserID] = u.ID
	sess.Values[sessionEmail] = u.Email
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, sessionUserID)
	delete(sess.Values, sessionEmail)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
