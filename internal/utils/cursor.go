package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// UserCursor is the keyset position for listing users ordered by
// (created_at, id).
type UserCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeUserCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(UserCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeUserCursor(cursor string) (UserCursor, error) {
	if cursor == "" {
		return UserCursor{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return UserCursor{}, ErrInvalidCursor
	}

	var c UserCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return UserCursor{}, ErrInvalidCursor
	}
	if !IsUUID(c.ID) || c.CreatedAt.IsZero() {
		return UserCursor{}, ErrInvalidCursor
	}
	return c, nil
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
