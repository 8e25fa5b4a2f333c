package employee

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("employee not found")

// Employee is the HR record linked to a user account.
type Employee struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	HireDate   *time.Time `json:"hireDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
