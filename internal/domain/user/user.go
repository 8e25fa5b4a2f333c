package user

import (
	"errors"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/role"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         role.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListUsersFilter struct {
	Limit int
	Role  *role.Role
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,assignable_role"`
}
