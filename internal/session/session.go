// Package session turns the session cookie into a typed Session.
//
// Callers only ever see a *Session or nil: a missing cookie, a malformed or
// tampered token, an expired token and a signed-out token all come back as
// nil. Why a request was unauthenticated is reported separately to an
// Observer so it can be logged and counted without leaking into control flow.
package session

import (
	"time"

	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/domain/role"
)

const CookieName = "session"

// Session is the verified identity of one request.
type Session struct {
	ID        string
	UserID    string
	Role      role.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) Pending() bool {
	return s != nil && !s.Role.IsAssigned()
}

func fromPayload(p auth.Payload) *Session {
	return &Session{
		ID:        p.ID,
		UserID:    p.UserID,
		Role:      p.Role,
		IssuedAt:  p.IssuedAt,
		ExpiresAt: p.ExpiresAt,
	}
}
