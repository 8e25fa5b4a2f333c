package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const pendingHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Awaiting role assignment</title>
  <style>body{font-family:sans-serif;max-width:36rem;margin:4rem auto;color:#222}</style>
</head>
<body>
  <h1>Your account is awaiting role assignment</h1>
  <p>An administrator needs to assign you a role before you can continue.
  You can close this page and sign in again later.</p>
  <form method="post" action="/api/auth/sign-out"><button type="submit">Sign out</button></form>
</body>
</html>`

// RenderPending writes the awaiting-assignment placeholder.
func RenderPending(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pendingHTML))
}
