// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	userstore "github.com/dalemusser/studycircle/internal/app/store/users"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxField = 200

// Handler owns the caller's own profile endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a Handler bound to the account store and logger.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users: users,
		Log:   logger,
	}
}

type profileInput struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Semester   string `json:"semester"`
}

// ServeProfile handles GET /auth/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, storeErr("load profile", err))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, acct)
}

// HandleUpdateProfile handles PUT /auth/profile. Name, department and
// semester are all required; email and password are not editable here.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in profileInput
	if err := uierrors.DecodeJSON(w, r, &in); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}
	p, err := in.validate()
	if err != nil {
		uierrors.WriteError(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Users.UpdateProfile(ctx, u.ID, p)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, storeErr("update profile", err))
		return
	}
	h.Log.Info("profile updated", zap.String("user_id", u.ID))
	uierrors.WriteJSON(w, http.StatusOK, acct)
}

func (in profileInput) validate() (userstore.Profile, error) {
	p := userstore.Profile{
		Name:       htmlsanitize.PlainText(in.Name),
		Department: htmlsanitize.PlainText(in.Department),
		Semester:   htmlsanitize.PlainText(in.Semester),
	}
	fields := []struct{ label, value string }{
		{"name", p.Name},
		{"department", p.Department},
		{"semester", p.Semester},
	}
	for _, f := range fields {
		if f.value == "" {
			return userstore.Profile{}, apperr.Validation("%s is required", f.label)
		}
		if utf8.RuneCountInString(f.value) > maxField {
			return userstore.Profile{}, apperr.Validation("%s must be at most %d characters", f.label, maxField)
		}
	}
	return p, nil
}

// storeErr maps a missing account to not_found; a session whose account
// was removed lands here.
func storeErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound("account")
	}
	return apperr.Store(op, err)
}
