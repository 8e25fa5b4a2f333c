package role

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is the authorization tier of a user. The zero value is Unassigned,
// the state a freshly signed-up user sits in until an admin picks a role.
type Role uint8

const (
	Unassigned Role = iota
	Admin
	HR
	Employee
)

var ErrUnknownRole = errors.New("unknown role")

// All lists the assignable roles.
var All = []Role{Admin, HR, Employee}

func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unassigned, nil
	case "admin":
		return Admin, nil
	case "hr":
		return HR, nil
	case "employee":
		return Employee, nil
	default:
		return Unassigned, ErrUnknownRole
	}
}

// String returns the wire name. Unassigned is the empty string.
func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case HR:
		return "hr"
	case Employee:
		return "employee"
	default:
		return ""
	}
}

func (r Role) IsAssigned() bool {
	return r == Admin || r == HR || r == Employee
}

// LandingPath is the page a role is sent to when it hits a page it may not see.
func (r Role) LandingPath() string {
	switch r {
	case Admin:
		return "/admin"
	case HR:
		return "/hr"
	case Employee:
		return "/employee"
	default:
		return "/pending"
	}
}

// In reports whether r is one of set. An empty set accepts any assigned role.
func (r Role) In(set ...Role) bool {
	if !r.IsAssigned() {
		return false
	}
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}

// MarshalJSON encodes Unassigned as null.
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.IsAssigned() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Unassigned
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
