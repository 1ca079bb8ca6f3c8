// internal/app/features/login/register.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	userstore "github.com/dalemusser/studycircle/internal/app/store/users"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studycircle/internal/app/system/inputval"
	"github.com/dalemusser/studycircle/internal/app/system/limits"
	"github.com/dalemusser/studycircle/internal/app/system/normalize"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/register                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := uierrors.DecodeJSONLimit(w, r, &c, limits.MaxAuthBodySize); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}
	email := normalize.Email(c.Email)
	if !inputval.IsValidEmail(email) {
		uierrors.WriteError(w, r, h.Log, apperr.Validation("a valid email address is required"))
		return
	}
	if msg := inputval.PasswordProblem(c.Password); msg != "" {
		uierrors.WriteError(w, r, h.Log, apperr.Validation("%s", msg))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.allow(ctx, w, r, email) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), h.BcryptCost)
	if err != nil {
		uierrors.WriteError(w, r, h.Log, apperr.Validation("password cannot be used"))
		return
	}

	u, err := h.Users.Create(ctx, models.User{
		Email:        email,
		Name:         htmlsanitize.PlainText(c.Name),
		Department:   htmlsanitize.PlainText(c.Department),
		Semester:     htmlsanitize.PlainText(c.Semester),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			uierrors.WriteError(w, r, h.Log, apperr.New(apperr.KindConflict, "An account with that email already exists."))
			return
		}
		uierrors.WriteError(w, r, h.Log, apperr.Store("create user", err))
		return
	}

	h.AuditLog.Registered(ctx, r, u.ID, u.Email)
	h.signIn(w, r, auth.User{ID: u.ID, Email: u.Email}, http.StatusCreated)
}
