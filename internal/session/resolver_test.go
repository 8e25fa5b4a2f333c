package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/domain/role"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recordingObserver) ObserveResolution(_ context.Context, o Outcome, _ error) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

func (r *recordingObserver) last() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return ""
	}
	return r.outcomes[len(r.outcomes)-1]
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func newCodec(t *testing.T) *auth.Codec {
	t.Helper()
	keys, err := auth.NewKeyring("resolver-test-secret-0123456789abcdef", "staffhub", time.Hour)
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	return auth.NewCodec(keys)
}

func TestResolve(t *testing.T) {
	codec := newCodec(t)

	valid, _, err := codec.Issue("u1", role.HR)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	pending, _, err := codec.Issue("u2", role.Unassigned)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired, err := codec.Encode(auth.Payload{
		ID: "old", UserID: "u3", Role: role.Admin,
		IssuedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// flip one character in the middle of the signature segment
	b := []byte(valid)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	tampered := string(b)

	tests := []struct {
		name        string
		cookie      string
		wantSession bool
		wantUser    string
		wantPending bool
		wantOutcome Outcome
	}{
		{name: "missing", cookie: "", wantOutcome: OutcomeMissingCookie},
		{name: "garbage", cookie: "not-a-token", wantOutcome: OutcomeMalformed},
		{name: "tampered", cookie: tampered, wantOutcome: OutcomeBadSignature},
		{name: "expired", cookie: expired, wantOutcome: OutcomeExpired},
		{name: "valid", cookie: valid, wantSession: true, wantUser: "u1", wantOutcome: OutcomeResolved},
		{name: "pending", cookie: pending, wantSession: true, wantUser: "u2", wantPending: true, wantOutcome: OutcomeResolved},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			r := NewResolver(codec, auth.NewMemoryRevocations(), obs)

			sess, err := r.Resolve(context.Background(), tt.cookie)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if (sess != nil) != tt.wantSession {
				t.Fatalf("got session %+v, want present=%v", sess, tt.wantSession)
			}
			if sess != nil {
				if sess.UserID != tt.wantUser {
					t.Fatalf("got user %q, want %q", sess.UserID, tt.wantUser)
				}
				if sess.Pending() != tt.wantPending {
					t.Fatalf("got pending %v, want %v", sess.Pending(), tt.wantPending)
				}
			}
			if obs.last() != tt.wantOutcome {
				t.Fatalf("got outcome %q, want %q", obs.last(), tt.wantOutcome)
			}
		})
	}
}

func TestResolve_ValidSessionCarriesPayload(t *testing.T) {
	codec := newCodec(t)
	token, p, err := codec.Issue("u1", role.Admin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sess, err := NewResolver(codec, nil, nil).Resolve(context.Background(), token)
	if err != nil || sess == nil {
		t.Fatalf("expected session, got %v %v", sess, err)
	}

	if sess.ID != p.ID || sess.Role != role.Admin || !sess.ExpiresAt.Equal(p.ExpiresAt) {
		t.Fatalf("session %+v does not match payload %+v", sess, p)
	}
}

func TestResolve_RevokedToken(t *testing.T) {
	codec := newCodec(t)
	store := auth.NewMemoryRevocations()
	obs := &recordingObserver{}
	r := NewResolver(codec, store, obs)

	token, p, err := codec.Issue("u1", role.Employee)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := store.Revoke(context.Background(), p.ID, p.ExpiresAt); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	sess, err := r.Resolve(context.Background(), token)
	if err != nil || sess != nil {
		t.Fatalf("expected nil session for revoked token, got %v %v", sess, err)
	}
	if obs.last() != OutcomeRevoked {
		t.Fatalf("expected revoked outcome, got %q", obs.last())
	}
}

func TestResolve_StoreFailureSurfaces(t *testing.T) {
	codec := newCodec(t)
	obs := &recordingObserver{}
	r := NewResolver(codec, failingRevocations{}, obs)

	token, _, err := codec.Issue("u1", role.Employee)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sess, err := r.Resolve(context.Background(), token)
	if err == nil || sess != nil {
		t.Fatalf("expected error and nil session, got %v %v", sess, err)
	}
	if obs.last() != OutcomeFailure {
		t.Fatalf("expected failure outcome, got %q", obs.last())
	}
}

func TestResolveRequest_ReadsCookie(t *testing.T) {
	codec := newCodec(t)
	r := NewResolver(codec, nil, nil)

	token, _, err := codec.Issue("u9", role.HR)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	sess, err := r.ResolveRequest(req)
	if err != nil || sess == nil || sess.UserID != "u9" {
		t.Fatalf("expected u9 session, got %+v %v", sess, err)
	}

	bare := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	sess, err = r.ResolveRequest(bare)
	if err != nil || sess != nil {
		t.Fatalf("expected no session without cookie, got %+v %v", sess, err)
	}
}

func TestObserversFanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	var calls int
	fn := ObserverFunc(func(context.Context, Outcome, error) { calls++ })

	Observers{a, nil, b, fn}.ObserveResolution(context.Background(), OutcomeExpired, nil)

	if a.last() != OutcomeExpired || b.last() != OutcomeExpired || calls != 1 {
		t.Fatalf("fan out did not reach every observer")
	}
}

func TestOutcomeSuspicious(t *testing.T) {
	for _, o := range []Outcome{OutcomeMalformed, OutcomeBadSignature, OutcomeRevoked} {
		if !o.Suspicious() {
			t.Fatalf("%q should be suspicious", o)
		}
	}
	for _, o := range []Outcome{OutcomeMissingCookie, OutcomeExpired, OutcomeResolved} {
		if o.Suspicious() {
			t.Fatalf("%q should not be suspicious", o)
		}
	}
}
