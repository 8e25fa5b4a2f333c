package cached

import (
	"context"
	"time"

	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/utils"
)

// UserStore is what the handlers need from a user repository.
type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ListCursor(ctx context.Context, filter user.ListUsersFilter, afterCreatedAt time.Time, afterID string) ([]user.User, bool, error)
	UpdateRole(ctx context.Context, id string, newRole role.Role) (user.User, error)
}

// Users puts a read-through TTL cache in front of GetByID. Writes that go
// through UpdateRole drop the cached copy.
type Users struct {
	UserStore
	cache *cache.Cache
}

func NewUsers(store UserStore, c *cache.Cache) *Users {
	if c == nil {
		c = cache.New(30 * time.Second)
	}
	return &Users{UserStore: store, cache: c}
}

func (u *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	key := utils.BuildUserCacheKey(id)

	if v, ok := u.cache.Get(key); ok {
		if cachedUser, ok := v.(user.User); ok {
			return cachedUser, nil
		}
	}

	found, err := u.UserStore.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	u.cache.Set(key, found)
	return found, nil
}

func (u *Users) UpdateRole(ctx context.Context, id string, newRole role.Role) (user.User, error) {
	updated, err := u.UserStore.UpdateRole(ctx, id, newRole)
	u.cache.Delete(utils.BuildUserCacheKey(id))
	return updated, err
}
