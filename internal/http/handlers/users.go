package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/geocoder89/staffhub/internal/notifications"
	"github.com/geocoder89/staffhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersRepo interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	ListCursor(ctx context.Context, filter user.ListUsersFilter, afterCreatedAt time.Time, afterID string) ([]user.User, bool, error)
	UpdateRole(ctx context.Context, id string, newRole role.Role) (user.User, error)
}

type UsersHandler struct {
	repo     UsersRepo
	notifier notifications.Notifier
	log      *slog.Logger
}

// NewUsersHandler builds the handler. notifier may be nil.
func NewUsersHandler(repo UsersRepo, notifier notifications.Notifier, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{repo: repo, notifier: notifier, log: log}
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)

	if err != nil {
		return -1
	}

	return n
}

// GET /api/users?limit=20&role=pending&cursor=...

func (h *UsersHandler) List(ctx *gin.Context) {
	limit := parseIntDefault(ctx.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be between 1 and 100", gin.H{"field": "limit"})
		return
	}

	filter := user.ListUsersFilter{Limit: limit}

	if raw := strings.TrimSpace(ctx.Query("role")); raw != "" {
		var r role.Role
		if raw != "pending" {
			parsed, err := role.Parse(raw)
			if err != nil || !parsed.IsAssigned() {
				RespondBadRequest(ctx, "role must be one of admin, hr, employee, pending", gin.H{"field": "role"})
				return
			}
			r = parsed
		}
		filter.Role = &r
	}

	// no cursor: the repo starts from the first row
	var afterCreatedAt time.Time
	afterID := ""

	if cursor := ctx.Query("cursor"); cursor != "" {
		cur, err := utils.DecodeUserCursor(cursor)
		if err != nil {
			RespondBadRequest(ctx, "cursor is invalid", gin.H{"field": "cursor"})
			return
		}
		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, hasMore, err := h.repo.ListCursor(cctx, filter, afterCreatedAt, afterID)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "users.list_failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	var next *string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		cur, err := utils.EncodeUserCursor(last.CreatedAt, last.ID)
		if err != nil {
			RespondInternal(ctx, "Could not list users")
			return
		}
		next = &cur
	}

	resp := gin.H{
		"limit":      limit,
		"count":      len(items),
		"items":      items,
		"hasMore":    hasMore,
		"nextCursor": next,
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

// GET /api/users/:id

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", gin.H{"field": "id"})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "users.get_failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// PATCH /api/users/:id/role
//
// The new role applies from the user's next sign-in; sessions already issued
// keep the role they were signed with until they expire.

func (h *UsersHandler) AssignRole(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", gin.H{"field": "id"})
		return
	}

	var req user.AssignRoleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	newRole, err := role.Parse(req.Role)
	if err != nil || !newRole.IsAssigned() {
		RespondBadRequest(ctx, "role must be one of admin, hr, employee", gin.H{"field": "role"})
		return
	}

	if actor, ok := middlewares.SessionFromContext(ctx); ok && actor.UserID == id && newRole != role.Admin {
		RespondConflict(ctx, "self_demotion", "Admins cannot remove their own admin role")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.UpdateRole(cctx, id, newRole)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "users.assign_role_failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Could not assign role")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "users.role_assigned", "user_id", id, "role", newRole.String())

	if h.notifier != nil {
		err := h.notifier.NotifyRoleAssigned(ctx.Request.Context(), notifications.RoleAssignedInput{
			UserID: u.ID,
			Email:  u.Email,
			Name:   u.Name,
			Role:   u.Role,
		})
		if err != nil {
			// the role is already saved; a lost notification is only logged
			h.log.WarnContext(ctx.Request.Context(), "users.notify_failed", "user_id", id, "err", err)
		}
	}

	ctx.JSON(http.StatusOK, u)
}
