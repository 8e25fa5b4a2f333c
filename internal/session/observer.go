package session

import (
	"context"
	"log/slog"

	"github.com/geocoder89/staffhub/internal/auth"
)

// Outcome is the diagnostic result of one resolution.
type Outcome string

const (
	OutcomeResolved      Outcome = "resolved"
	OutcomeMissingCookie Outcome = "missing_cookie"
	OutcomeMalformed     Outcome = "malformed"
	OutcomeBadSignature  Outcome = "bad_signature"
	OutcomeExpired       Outcome = "expired"
	OutcomeRevoked       Outcome = "revoked"
	OutcomeFailure       Outcome = "failure"
)

func outcomeFromReason(r auth.Reason) Outcome {
	switch r {
	case auth.ReasonExpired:
		return OutcomeExpired
	case auth.ReasonBadSignature:
		return OutcomeBadSignature
	default:
		return OutcomeMalformed
	}
}

// Suspicious reports outcomes that may indicate tampering.
func (o Outcome) Suspicious() bool {
	return o == OutcomeMalformed || o == OutcomeBadSignature || o == OutcomeRevoked
}

type Observer interface {
	ObserveResolution(ctx context.Context, outcome Outcome, err error)
}

type ObserverFunc func(ctx context.Context, outcome Outcome, err error)

func (f ObserverFunc) ObserveResolution(ctx context.Context, outcome Outcome, err error) {
	f(ctx, outcome, err)
}

// Observers fans a resolution out to several observers.
type Observers []Observer

func (os Observers) ObserveResolution(ctx context.Context, outcome Outcome, err error) {
	for _, o := range os {
		if o != nil {
			o.ObserveResolution(ctx, outcome, err)
		}
	}
}

type LogObserver struct {
	log *slog.Logger
}

func NewLogObserver(log *slog.Logger) *LogObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LogObserver{log: log}
}

func (l *LogObserver) ObserveResolution(ctx context.Context, outcome Outcome, err error) {
	switch {
	case outcome == OutcomeFailure:
		l.log.ErrorContext(ctx, "session.resolve", "outcome", string(outcome), "err", err)
	case outcome.Suspicious():
		l.log.WarnContext(ctx, "session.resolve", "outcome", string(outcome), "err", err)
	default:
		l.log.DebugContext(ctx, "session.resolve", "outcome", string(outcome))
	}
}
