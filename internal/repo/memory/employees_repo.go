package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/staffhub/internal/domain/employee"
)

type EmployeesRepo struct {
	mu     sync.RWMutex
	byUser map[string]employee.Employee
}

func NewEmployeesRepo(seed ...employee.Employee) *EmployeesRepo {
	r := &EmployeesRepo{byUser: make(map[string]employee.Employee)}
	for _, e := range seed {
		r.byUser[e.UserID] = e
	}
	return r
}

func (r *EmployeesRepo) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byUser[userID]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}
