package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/security"
	"github.com/google/uuid"
)

// AdminStore is the subset of the users repository needed for seeding.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
}

// EnsureAdminUser creates the bootstrap admin from ADMIN_EMAIL and
// ADMIN_PASSWORD. Without an admin nobody could assign roles, so every
// other account would stay pending forever.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err = users.GetByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         role.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			// another instance won the race
			return false, nil
		}
		return false, err
	}

	return true, nil
}
