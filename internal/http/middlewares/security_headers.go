package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiCSP = "default-src 'none'"
	// server-rendered pages carry their own inline styles
	pageCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; style-src 'self' 'unsafe-inline'"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Content-Security-Policy", apiCSP)
		} else {
			c.Header("Content-Security-Policy", pageCSP)
		}
		c.Next()
	}
}
