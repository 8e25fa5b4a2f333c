package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/security"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/gin-gonic/gin"
)

type UserByEmailReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string, r role.Role) (string, auth.Payload, error)
	TTL() time.Duration
}

type SessionResolver interface {
	ResolveRequest(r *http.Request) (*session.Session, error)
}

type SignInRecorder interface {
	RecordSignIn(result string)
}

type AuthHandler struct {
	users    UserByEmailReader
	tokens   TokenIssuer
	resolver SessionResolver
	revoked  auth.RevocationStore
	rec      SignInRecorder
	cfg      config.Config
	log      *slog.Logger
}

func NewAuthHandler(
	users UserByEmailReader,
	tokens TokenIssuer,
	resolver SessionResolver,
	revoked auth.RevocationStore,
	rec SignInRecorder,
	cfg config.Config,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		resolver: resolver,
		revoked:  revoked,
		rec:      rec,
		cfg:      cfg,
		log:      log,
	}
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/sign-in

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(req.Password)
			h.record("invalid_credentials")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "auth.sign_in_lookup_failed", "err", err)
		h.record("error")
		RespondInternal(ctx, "Could not sign in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			h.record("invalid_credentials")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "auth.sign_in_hash_failed", "user_id", foundUser.ID, "err", err)
		h.record("error")
		RespondInternal(ctx, "Could not sign in")
		return
	}

	token, payload, err := h.tokens.Issue(foundUser.ID, foundUser.Role)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "auth.issue_failed", "user_id", foundUser.ID, "err", err)
		h.record("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token, payload.ExpiresAt)
	h.record("ok")

	ctx.JSON(http.StatusOK, sessionBody{UserID: payload.UserID, Role: payload.Role})
}

// POST /api/auth/sign-out

func (h *AuthHandler) SignOut(ctx *gin.Context) {
	sess, err := h.resolver.ResolveRequest(ctx.Request)

	if err == nil && sess != nil && h.revoked != nil {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		// best effort: the cookie is cleared either way
		if err := h.revoked.Revoke(cctx, sess.ID, sess.ExpiresAt); err != nil {
			h.log.WarnContext(ctx.Request.Context(), "auth.revoke_failed", "user_id", sess.UserID, "err", err)
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) record(result string) {
	if h.rec != nil {
		h.rec.RecordSignIn(result)
	}
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.tokens.TTL().Seconds())
	}

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		session.CookieName,
		raw,
		maxAge,
		"/",
		"",
		h.cfg.IsProd(),
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		h.cfg.IsProd(),
		true,
	)
}
