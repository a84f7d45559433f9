package middleware

import (
	"bitwise74/roleplay-api/pkg/apierr"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter caps request bodies at maxBytes. Requests that announce a
// bigger body are rejected straight away, the rest fail while being bound.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			apierr.Abort(c, apierr.BadRequest(http.StatusRequestEntityTooLarge, "Request body size exceeds limit"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
