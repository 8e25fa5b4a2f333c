package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretLen = 32

var (
	ErrWeakSecret = errors.New("session secret must be at least 32 bytes")

	// ErrInvalidToken is matched by every Decode failure. The returned error
	// also matches exactly one of the reason errors below.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")

	// ErrUnencodable is returned by Encode for payloads a token cannot carry
	// without loss: sub-second timestamps or a role outside the known set.
	ErrUnencodable = errors.New("payload not encodable")
)

// Keyring is the process-wide signing configuration. It is built once at
// startup and only read afterwards.
type Keyring struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewKeyring(secret, issuer string, ttl time.Duration) (*Keyring, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	if issuer == "" {
		issuer = "staffhub"
	}

	return &Keyring{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

func (k *Keyring) TTL() time.Duration {
	return k.ttl
}

// Payload is what a session token carries. Timestamps are whole seconds
// and come back from Decode in UTC.
type Payload struct {
	ID        string
	UserID    string
	Role      role.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	keys *Keyring
	now  func() time.Time
}

func NewCodec(keys *Keyring) *Codec {
	return &Codec{keys: keys, now: time.Now}
}

// WithClock returns a copy of the codec reading time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{keys: c.keys, now: now}
}

func (c *Codec) TTL() time.Duration {
	return c.keys.ttl
}

// Issue stamps a fresh id and lifetime on a payload for userID and signs it.
func (c *Codec) Issue(userID string, r role.Role) (string, Payload, error) {
	now := c.now().UTC().Truncate(time.Second)

	p := Payload{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      r,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.keys.ttl),
	}

	token, err := c.Encode(p)
	if err != nil {
		return "", Payload{}, err
	}

	return token, p, nil
}

func (c *Codec) Encode(p Payload) (string, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return "", errors.New("encode session: empty user id")
	}
	if p.ID == "" {
		return "", errors.New("encode session: empty token id")
	}
	if !p.Role.IsAssigned() && p.Role != role.Unassigned {
		return "", fmt.Errorf("encode session: role %d: %w", p.Role, ErrUnencodable)
	}
	// NumericDate has second precision
	if !wholeSecond(p.IssuedAt) || !wholeSecond(p.ExpiresAt) {
		return "", fmt.Errorf("encode session: sub-second timestamp: %w", ErrUnencodable)
	}

	claims := Claims{
		Role: p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.ID,
			Issuer:    c.keys.issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(p.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.keys.secret)
}

func (c *Codec) Decode(tokenStr string) (Payload, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return Payload{}, invalid(ErrTokenMalformed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.keys.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.keys.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Payload{}, invalid(ErrTokenExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Payload{}, invalid(ErrTokenSignature)
		default:
			return Payload{}, invalid(ErrTokenMalformed)
		}
	}

	if strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return Payload{}, invalid(ErrTokenMalformed)
	}

	r, err := role.Parse(claims.Role)
	if err != nil {
		return Payload{}, invalid(ErrTokenMalformed)
	}

	p := Payload{
		ID:        claims.ID,
		UserID:    claims.Subject,
		Role:      r,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time.UTC()
	}

	return p, nil
}

func wholeSecond(t time.Time) bool {
	return t.Equal(t.Truncate(time.Second))
}

func invalid(reason error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, reason)
}

// Reason names why a token was rejected.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonMalformed    Reason = "malformed"
	ReasonBadSignature Reason = "bad_signature"
	ReasonExpired      Reason = "expired"
)

func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, ErrTokenSignature):
		return ReasonBadSignature
	default:
		return ReasonMalformed
	}
}
