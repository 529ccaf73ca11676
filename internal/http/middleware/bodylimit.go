package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies: multipart uploads at multipartLimit bytes,
// everything else at jsonLimit.
func BodyLimit(jsonLimit, multipartLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		limit := jsonLimit
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = multipartLimit
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
