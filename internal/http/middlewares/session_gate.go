package middlewares

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/geocoder89/staffhub/internal/actorctx"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/gate"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionResolver is the part of session.Resolver the gate needs.
type SessionResolver interface {
	ResolveRequest(r *http.Request) (*session.Session, error)
}

// SessionGate wires the resolver and the gate into gin.
type SessionGate struct {
	resolver SessionResolver
	gate     *gate.Gate
	log      *slog.Logger
}

func NewSessionGate(resolver SessionResolver, g *gate.Gate, log *slog.Logger) *SessionGate {
	if g == nil {
		g = gate.New(gate.DefaultSignInPath, nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionGate{resolver: resolver, gate: g, log: log}
}

// Resolve reads the session cookie. ok is false when the resolver failed and
// a 500 has already been written.
func (m *SessionGate) Resolve(c *gin.Context) (sess *session.Session, ok bool) {
	sess, err := m.resolver.ResolveRequest(c.Request)
	if err != nil {
		m.log.ErrorContext(c.Request.Context(), "session.resolve_failed", "err", err, "path", c.Request.URL.Path)
		return nil, false
	}
	if sess != nil {
		setSession(c, sess)
	}
	return sess, true
}

// RequirePage guards a server-rendered page. Visitors without a session are
// sent to sign-in, pending users see the placeholder, and users whose role
// is not admitted are sent to their own landing page.
func (m *SessionGate) RequirePage(required ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := m.Resolve(c)
		if !ok {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal server error"))
			c.Abort()
			return
		}

		d := m.gate.Decide(sess, required...)

		switch d.Action {
		case gate.Allow:
			c.Next()
		case gate.RenderPending:
			RenderPending(c)
			c.Abort()
		default:
			location := d.Location
			if d.State == gate.Unauthenticated {
				location = signInLocation(m.gate.SignInPath(), c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusFound, location)
			c.Abort()
		}
	}
}

// RequireAPI guards a JSON endpoint with status codes instead of redirects.
func (m *SessionGate) RequireAPI(required ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := m.Resolve(c)
		if !ok {
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		}

		d := m.gate.Decide(sess, required...)

		switch {
		case d.Action == gate.Allow:
			c.Next()
		case d.State == gate.Unauthenticated:
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Sign in required")
		case d.State == gate.PendingRole:
			abortJSON(c, http.StatusForbidden, "role_pending", "Your account is awaiting role assignment")
		default:
			abortJSON(c, http.StatusForbidden, "forbidden", "Insufficient role")
		}
	}
}

func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(CtxSession, sess)
	c.Request = c.Request.WithContext(actorctx.WithSession(c.Request.Context(), sess))
}

func signInLocation(signInPath, next string) string {
	if next == "" || next == "/" || next == signInPath {
		return signInPath
	}
	return signInPath + "?" + url.Values{"next": {next}}.Encode()
}

func abortJSON(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": id,
		},
	})
}
