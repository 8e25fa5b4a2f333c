package notifications

import (
	"context"

	"github.com/geocoder89/staffhub/internal/domain/role"
)

// RoleAssignedInput tells a user their pending account now has a role.
type RoleAssignedInput struct {
	UserID string
	Email  string
	Name   string
	Role   role.Role
}

type Notifier interface {
	NotifyRoleAssigned(ctx context.Context, input RoleAssignedInput) error
}
