package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u       user.User
		rawRole *string
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&rawRole,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}

	if rawRole != nil {
		u.Role, err = role.Parse(*rawRole)
		if err != nil {
			return user.User{}, fmt.Errorf("user %s: %w", u.ID, err)
		}
	}

	return u, nil
}

// roleValue maps Unassigned to SQL NULL.
func roleValue(r role.Role) *string {
	if !r.IsAssigned() {
		return nil
	}
	s := r.String()
	return &s
}

// GetByID is findUserById.
func (r *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// ListCursor is listUsers: a keyset page ordered by (created_at, id).
// An empty afterID starts from the first row. hasMore reports whether
// another page exists after the last returned user.
func (r *UsersRepo) ListCursor(
	ctx context.Context,
	filter user.ListUsersFilter,
	afterCreatedAt time.Time,
	afterID string,
) (users []user.User, hasMore bool, err error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var args []any
	where := []string{"TRUE"}

	if afterID != "" {
		args = append(args, afterCreatedAt, afterID)
		where = append(where, `(created_at, id) > ($1, $2::uuid)`)
	}

	if filter.Role != nil {
		if filter.Role.IsAssigned() {
			args = append(args, filter.Role.String())
			where = append(where, fmt.Sprintf("role = $%d", len(args)))
		} else {
			where = append(where, "role IS NULL")
		}
	}

	args = append(args, limit+1)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at, id LIMIT $%d`, len(args))

	err = r.observe("users.list_cursor", func() error {
		rows, e := r.pool.Query(ctx, query, args...)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			u, e := scanUser(rows)
			if e != nil {
				return e
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, false, err
	}

	if len(users) > limit {
		users = users[:limit]
		hasMore = true
	}
	if users == nil {
		users = []user.User{}
	}

	return users, hasMore, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Email, u.PasswordHash, u.Name, roleValue(u.Role), u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return user.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id string, newRole role.Role) (u user.User, err error) {
	err = r.observe("users.update_role", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `
			UPDATE users
			SET role = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, roleValue(newRole),
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
