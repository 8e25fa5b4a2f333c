package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/staffhub/internal/actorctx"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/domain/employee"
	"github.com/gin-gonic/gin"
)

type EmployeeReader interface {
	GetByUserID(ctx context.Context, userID string) (employee.Employee, error)
}

type EmployeesHandler struct {
	repo EmployeeReader
	log  *slog.Logger
}

func NewEmployeesHandler(repo EmployeeReader, log *slog.Logger) *EmployeesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &EmployeesHandler{repo: repo, log: log}
}

// GET /api/employees/me

func (h *EmployeesHandler) Me(ctx *gin.Context) {
	userID, ok := actorctx.UserIDFrom(ctx.Request.Context())
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByUserID(cctx, userID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			RespondNotFound(ctx, "No employee record for this account")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "employees.me_failed", "user_id", userID, "err", err)
		RespondInternal(ctx, "Could not fetch employee record")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}
