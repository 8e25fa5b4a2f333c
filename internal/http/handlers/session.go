package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/gin-gonic/gin"
)

// sessionBody is the client-facing view of a session. Role is null while the
// account awaits assignment.
type sessionBody struct {
	UserID string    `json:"userId"`
	Role   role.Role `json:"role"`
}

type SessionHandler struct {
	resolver SessionResolver
	log      *slog.Logger
}

func NewSessionHandler(resolver SessionResolver, log *slog.Logger) *SessionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SessionHandler{resolver: resolver, log: log}
}

// GET /api/session
//
// Errors here are a flat {"error": "..."} string, not the API envelope.
func (h *SessionHandler) Get(ctx *gin.Context) {
	sess, err := h.resolver.ResolveRequest(ctx.Request)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "session.endpoint_failed", "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if sess == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "No session found"})
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.JSON(http.StatusOK, sessionBody{UserID: sess.UserID, Role: sess.Role})
}
