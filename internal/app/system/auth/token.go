package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtx "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims is the bearer-token payload.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwtx.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	fetcher UserFetcher
}

// NewTokenManager returns a manager signing with secret. fetcher may be nil.
func NewTokenManager(secret string, ttl time.Duration, fetcher UserFetcher) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, fetcher: fetcher}, nil
}

// Issue signs a token for u and reports when it expires.
func (m *TokenManager) Issue(u User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwtx.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			ExpiresAt: jwtx.NewNumericDate(exp),
			IssuedAt:  jwtx.NewNumericDate(now),
		},
	}
	tok, err := jwtx.NewWithClaims(jwtx.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Verify parses tokenStr and returns its claims when the signature and
// expiry are valid.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwtx.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtx.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtx.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, jwtx.ErrTokenInvalidClaims
	}
	return claims, nil
}

// CurrentUser authenticates "Authorization: Bearer <token>".
func (m *TokenManager) CurrentUser(r *http.Request) (User, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return User{}, ErrUnauthenticated
	}
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return User{}, ErrUnauthenticated
	}
	claims, err := m.Verify(strings.TrimSpace(tok))
	if err != nil {
		return User{}, ErrUnauthenticated
	}
	u := User{ID: claims.UserID, Email: claims.Email}
	if m.fetcher != nil {
		email, ok := m.fetcher.FetchUser(r.Context(), u.ID)
		if !ok {
			return User{}, ErrUnauthenticated
		}
		u.Email = email
	}
	return u, nil
}
