package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
)

// UsersRepo is a map-backed user store used by tests and local runs without
// postgres.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo(seed ...user.User) *UsersRepo {
	r := &UsersRepo{items: make(map[string]user.User)}
	for _, u := range seed {
		r.items[u.ID] = u
	}
	return r
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ListCursor(
	_ context.Context,
	filter user.ListUsersFilter,
	afterCreatedAt time.Time,
	afterID string,
) ([]user.User, bool, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if !after(u, afterCreatedAt, afterID) {
			continue
		}
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if len(all) > limit {
		return all[:limit], true, nil
	}
	return all, false, nil
}

func after(u user.User, createdAt time.Time, id string) bool {
	if id == "" {
		return true
	}
	if u.CreatedAt.After(createdAt) {
		return true
	}
	return u.CreatedAt.Equal(createdAt) && u.ID > id
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailAlreadyUsed
		}
	}
	r.items[u.ID] = u
	return nil
}

func (r *UsersRepo) UpdateRole(_ context.Context, id string, newRole role.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u.Role = newRole
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return u, nil
}
