// Package gate decides, per request, what a resolved session may see.
//
// The decision is a pure function of the session and the roles a resource
// requires. It is recomputed on every request and never cached.
package gate

import (
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/session"
)

const DefaultSignInPath = "/sign-in"

type State uint8

const (
	Unauthenticated State = iota
	PendingRole
	Authorized
)

func (s State) String() string {
	switch s {
	case PendingRole:
		return "pending_role"
	case Authorized:
		return "authorized"
	default:
		return "unauthenticated"
	}
}

type Action uint8

const (
	Redirect Action = iota
	RenderPending
	Allow
)

func (a Action) String() string {
	switch a {
	case RenderPending:
		return "render_pending"
	case Allow:
		return "allow"
	default:
		return "redirect"
	}
}

type Decision struct {
	State    State
	Action   Action
	Location string // set when Action is Redirect
}

// Recorder receives every decision, typically to count it.
type Recorder interface {
	RecordDecision(state State, action Action)
}

type Gate struct {
	signInPath string
	rec        Recorder
}

func New(signInPath string, rec Recorder) *Gate {
	if signInPath == "" {
		signInPath = DefaultSignInPath
	}
	return &Gate{signInPath: signInPath, rec: rec}
}

func (g *Gate) SignInPath() string {
	return g.signInPath
}

func StateOf(sess *session.Session) State {
	switch {
	case sess == nil || sess.UserID == "":
		return Unauthenticated
	case !sess.Role.IsAssigned():
		return PendingRole
	default:
		return Authorized
	}
}

// Decide maps a session and the roles a resource requires to an action.
// An empty required set admits any assigned role.
func (g *Gate) Decide(sess *session.Session, required ...role.Role) Decision {
	d := g.decide(sess, required)
	if g.rec != nil {
		g.rec.RecordDecision(d.State, d.Action)
	}
	return d
}

func (g *Gate) decide(sess *session.Session, required []role.Role) Decision {
	state := StateOf(sess)

	switch state {
	case Unauthenticated:
		return Decision{State: state, Action: Redirect, Location: g.signInPath}
	case PendingRole:
		return Decision{State: state, Action: RenderPending}
	}

	if sess.Role.In(required...) {
		return Decision{State: state, Action: Allow}
	}

	return Decision{State: state, Action: Redirect, Location: sess.Role.LandingPath()}
}
