package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} | staffhub</title>
  <style>body{font-family:sans-serif;max-width:48rem;margin:3rem auto;color:#222}</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .UserID}}<p>Signed in as <code>{{.UserID}}</code> ({{.Role}}).</p>{{end}}
  <p>{{.Body}}</p>
  {{if .UserID}}<form method="post" action="/api/auth/sign-out"><button type="submit">Sign out</button></form>{{end}}
</body>
</html>`))

type pageData struct {
	Title  string
	Body   string
	UserID string
	Role   string
}

type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func renderPage(ctx *gin.Context, data pageData) {
	if sess, ok := middlewares.SessionFromContext(ctx); ok {
		data.UserID = sess.UserID
		data.Role = sess.Role.String()
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		ctx.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal server error"))
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Landing sends an authorized user to the page for their role. It serves
// /dashboard and /pending; the gate has already handled every other state.
func (h *PagesHandler) Landing(ctx *gin.Context) {
	sess, ok := middlewares.SessionFromContext(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/sign-in")
		return
	}
	ctx.Redirect(http.StatusFound, sess.Role.LandingPath())
}

func (h *PagesHandler) Admin(ctx *gin.Context) {
	renderPage(ctx, pageData{Title: "Administration", Body: "Manage users and assign roles."})
}

func (h *PagesHandler) HR(ctx *gin.Context) {
	renderPage(ctx, pageData{Title: "Human resources", Body: "Employee records and onboarding."})
}

func (h *PagesHandler) Employee(ctx *gin.Context) {
	renderPage(ctx, pageData{Title: "My workspace", Body: "Your employee profile and documents."})
}

func (h *PagesHandler) SignIn(ctx *gin.Context) {
	renderPage(ctx, pageData{
		Title: "Sign in",
		Body:  "POST your email and password as JSON to /api/auth/sign-in.",
	})
}
