package apierr

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into v. An empty body leaves v untouched
// so that required fields are reported by validation instead. On failure the
// request is aborted and false is returned.
func BindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Abort(c, BadRequest(http.StatusRequestEntityTooLarge, "Request body size exceeds limit"))
		return false
	}

	Abort(c, BadRequest(http.StatusBadRequest, "Invalid request body"))
	return false
}
