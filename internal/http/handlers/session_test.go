package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/gin-gonic/gin"
)

type fakeResolver struct {
	resolveFn func(r *http.Request) (*session.Session, error)
}

func (f *fakeResolver) ResolveRequest(r *http.Request) (*session.Session, error) {
	if f.resolveFn != nil {
		return f.resolveFn(r)
	}
	return nil, nil
}

func TestSessionHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		sess   *session.Session
		err    error
		status int
		body   string
	}{
		{"no session", nil, nil, http.StatusUnauthorized, `{"error":"No session found"}`},
		{"hr", &session.Session{UserID: "u1", Role: role.HR}, nil, http.StatusOK, `{"userId":"u1","role":"hr"}`},
		{"admin", &session.Session{UserID: "u9", Role: role.Admin}, nil, http.StatusOK, `{"userId":"u9","role":"admin"}`},
		{"pending", &session.Session{UserID: "u2"}, nil, http.StatusOK, `{"userId":"u2","role":null}`},
		{"store down", nil, errors.New("redis: connection refused"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := &fakeResolver{resolveFn: func(*http.Request) (*session.Session, error) {
				return tc.sess, tc.err
			}}

			r := gin.New()
			r.GET("/api/session", handlers.NewSessionHandler(res, nil).Get)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tc.body {
				t.Fatalf("body = %s, want %s", got, tc.body)
			}
			if strings.Contains(w.Body.String(), "redis") {
				t.Fatalf("failure reason leaked into the response")
			}
		})
	}
}
