package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/db"
	apphttp "github.com/geocoder89/staffhub/internal/http"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/geocoder89/staffhub/internal/redisclient"
	"github.com/geocoder89/staffhub/internal/repo/cached"
	"github.com/geocoder89/staffhub/internal/repo/postgres"
	"github.com/geocoder89/staffhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	role          TEXT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS employees (
	id          UUID PRIMARY KEY,
	user_id     UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	department  TEXT NOT NULL DEFAULT '',
	position    TEXT NOT NULL DEFAULT '',
	hire_date   DATE NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

func testConfig() config.Config {
	return config.Config{
		Env:               "test",
		SessionSecret:     "integration-secret-0123456789abcdef",
		SessionTTLMinutes: 60,
		SessionIssuer:     "staffhub",
		AdminEmail:        "admin@example.com",
		AdminPassword:     "admin-password-123",
		AdminName:         "Test Admin",
		SignInRateLimit:   100,
	}
}

// setupRouter wires postgres from TEST_DB_DSN and an in-process redis.
func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE employees, users CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	mr := miniredis.RunT(t)
	rc, err := redisclient.Connect(ctx, redisclient.Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("redis connect: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	cfg := testConfig()
	prom := observability.NewProm(prometheus.NewRegistry())

	usersRepo := postgres.NewUsersRepo(pool, prom)
	if _, err := db.EnsureAdminUser(ctx, usersRepo, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	keys, err := auth.NewKeyring(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL())
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	codec := auth.NewCodec(keys)
	revocations := auth.NewRedisRevocations(rc.Raw())

	router := apphttp.NewRouter(apphttp.Deps{
		Cfg:         cfg,
		Prom:        prom,
		Resolver:    session.NewResolver(codec, revocations, prom),
		Tokens:      codec,
		Revocations: revocations,
		Users:       cached.NewUsers(usersRepo, nil),
		Employees:   postgres.NewEmployeesRepo(pool, prom),
		Ready:       map[string]handlers.Pinger{"postgres": pool, "redis": rc},
	})

	return router, pool
}

func doRequest(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}

	t.Fatalf("session cookie not found in response")
	return nil
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func TestIntegration_AdminAssignsPendingUser(t *testing.T) {
	router, pool := setupRouter(t)
	ctx := context.Background()

	// a freshly onboarded account with no role yet
	pendingID := "5f0e9f52-7d0c-4c44-8a77-7c6f3fb2d001"
	now := time.Now().UTC()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		SELECT $1, 'new@example.com', password_hash, 'New Hire', NULL, $2, $2
		FROM users WHERE email = 'admin@example.com'`,
		pendingID, now,
	)
	if err != nil {
		t.Fatalf("insert pending user: %v", err)
	}

	w := doRequest(router, http.MethodPost, "/api/auth/sign-in", `{"email":"new@example.com","password":"admin-password-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pending sign-in status = %d body=%s", w.Code, w.Body.String())
	}
	pendingCookie := sessionCookie(t, w)

	w = doRequest(router, http.MethodGet, "/api/session", "", pendingCookie)
	var sess struct {
		UserID string  `json:"userId"`
		Role   *string `json:"role"`
	}
	mustReadJSON(t, w, &sess)
	if sess.UserID != pendingID || sess.Role != nil {
		t.Fatalf("unexpected pending session %+v", sess)
	}

	w = doRequest(router, http.MethodGet, "/admin", "", pendingCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("pending page status = %d", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/api/auth/sign-in", `{"email":"admin@example.com","password":"admin-password-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin sign-in status = %d body=%s", w.Code, w.Body.String())
	}
	adminCookie := sessionCookie(t, w)

	w = doRequest(router, http.MethodPatch, "/api/users/"+pendingID+"/role", `{"role":"employee"}`, adminCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("assign role status = %d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/api/users/"+pendingID, "", adminCookie)
	var u struct {
		Role string `json:"role"`
	}
	mustReadJSON(t, w, &u)
	if u.Role != "employee" {
		t.Fatalf("expected employee role after assignment, got %q", u.Role)
	}

	// sign out revokes through redis
	w = doRequest(router, http.MethodPost, "/api/auth/sign-out", "", adminCookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("sign-out status = %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/api/session", "", adminCookie)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session status = %d, want 401", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestIntegration_ListUsersPages(t *testing.T) {
	router, pool := setupRouter(t)
	ctx := context.Background()

	later := time.Now().UTC().Add(time.Hour)
	for i, id := range []string{
		"5f0e9f52-7d0c-4c44-8a77-7c6f3fb2d011",
		"5f0e9f52-7d0c-4c44-8a77-7c6f3fb2d012",
	} {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1, $2, 'x', 'Listed', NULL, $3, $3)`,
			id, "listed"+string(rune('a'+i))+"@example.com", later.Add(time.Duration(i)*time.Minute),
		)
		if err != nil {
			t.Fatalf("insert user %s: %v", id, err)
		}
	}

	w := doRequest(router, http.MethodPost, "/api/auth/sign-in", `{"email":"admin@example.com","password":"admin-password-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin sign-in status = %d body=%s", w.Code, w.Body.String())
	}
	adminCookie := sessionCookie(t, w)

	type page struct {
		Count int `json:"count"`
		Items []struct {
			ID    string  `json:"id"`
			Email string  `json:"email"`
			Role  *string `json:"role"`
		} `json:"items"`
		HasMore    bool    `json:"hasMore"`
		NextCursor *string `json:"nextCursor"`
	}

	// first page has no cursor
	w = doRequest(router, http.MethodGet, "/api/users?limit=2", "", adminCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("first page status = %d body=%s", w.Code, w.Body.String())
	}
	var first page
	mustReadJSON(t, w, &first)
	if first.Count != 2 || !first.HasMore || first.NextCursor == nil {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].Email != "admin@example.com" {
		t.Fatalf("expected admin first, got %q", first.Items[0].Email)
	}

	w = doRequest(router, http.MethodGet, "/api/users?limit=2&cursor="+*first.NextCursor, "", adminCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("second page status = %d body=%s", w.Code, w.Body.String())
	}
	var second page
	mustReadJSON(t, w, &second)
	if second.Count != 1 || second.HasMore || second.Items[0].ID != "5f0e9f52-7d0c-4c44-8a77-7c6f3fb2d012" {
		t.Fatalf("unexpected second page %+v", second)
	}

	w = doRequest(router, http.MethodGet, "/api/users?role=pending", "", adminCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("pending filter status = %d body=%s", w.Code, w.Body.String())
	}
	var pending page
	mustReadJSON(t, w, &pending)
	if pending.Count != 2 {
		t.Fatalf("expected 2 pending users, got %+v", pending)
	}
	for _, it := range pending.Items {
		if it.Role != nil {
			t.Fatalf("pending filter returned role %q", *it.Role)
		}
	}
}
