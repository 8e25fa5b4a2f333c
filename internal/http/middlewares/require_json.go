package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON refuses write requests whose media type is not
// application/json. Parameters such as charset are ignored.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !strings.EqualFold(c.ContentType(), gin.MIMEJSON) {
				abortJSON(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
