package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at max. A declared Content-Length over the
// cap is refused up front; otherwise the reader fails once max is crossed and
// BindJSON reports it.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			abortJSON(c, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large")
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}

		c.Next()
	}
}
