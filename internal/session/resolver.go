package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocoder89/staffhub/internal/auth"
)

// Decoder is the part of auth.Codec the resolver needs.
type Decoder interface {
	Decode(token string) (auth.Payload, error)
}

type Resolver struct {
	codec    Decoder
	revoked  auth.RevocationStore
	observer Observer
}

func NewResolver(codec Decoder, revoked auth.RevocationStore, observer Observer) *Resolver {
	if observer == nil {
		observer = Observers{}
	}
	return &Resolver{codec: codec, revoked: revoked, observer: observer}
}

// Resolve returns the session carried by cookieValue, or nil when there is
// none. The error is non-nil only when the revocation store could not be
// consulted; the caller should answer with a generic 500.
func (r *Resolver) Resolve(ctx context.Context, cookieValue string) (*Session, error) {
	raw := strings.TrimSpace(cookieValue)
	if raw == "" {
		r.observer.ObserveResolution(ctx, OutcomeMissingCookie, nil)
		return nil, nil
	}

	p, err := r.codec.Decode(raw)
	if err != nil {
		r.observer.ObserveResolution(ctx, outcomeFromReason(auth.ReasonOf(err)), err)
		return nil, nil
	}

	if r.revoked != nil {
		revoked, err := r.revoked.IsRevoked(ctx, p.ID)
		if err != nil {
			err = fmt.Errorf("check revocation: %w", err)
			r.observer.ObserveResolution(ctx, OutcomeFailure, err)
			return nil, err
		}
		if revoked {
			r.observer.ObserveResolution(ctx, OutcomeRevoked, nil)
			return nil, nil
		}
	}

	r.observer.ObserveResolution(ctx, OutcomeResolved, nil)
	return fromPayload(p), nil
}

// ResolveRequest reads the session cookie off req and resolves it.
func (r *Resolver) ResolveRequest(req *http.Request) (*Session, error) {
	c, err := req.Cookie(CookieName)
	if err != nil {
		// only http.ErrNoCookie
		return r.Resolve(req.Context(), "")
	}
	return r.Resolve(req.Context(), c.Value)
}
