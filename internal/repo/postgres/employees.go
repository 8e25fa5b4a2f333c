package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/staffhub/internal/domain/employee"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEmployeesRepo(pool *pgxpool.Pool, prom *observability.Prom) *EmployeesRepo {
	return &EmployeesRepo{pool: pool, prom: prom}
}

// GetByUserID is findEmployeeByUserId.
func (r *EmployeesRepo) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	var e employee.Employee

	query := func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, user_id, first_name, last_name, department, position, hire_date, created_at, updated_at
			FROM employees
			WHERE user_id = $1`,
			userID,
		).Scan(
			&e.ID,
			&e.UserID,
			&e.FirstName,
			&e.LastName,
			&e.Department,
			&e.Position,
			&e.HireDate,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
	}

	var err error
	if r.prom != nil {
		err = r.prom.ObserveDB("employees.get_by_user_id", query)
	} else {
		err = query()
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrNotFound
		}
		return employee.Employee{}, err
	}

	return e, nil
}
