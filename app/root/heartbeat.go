// Package root contains endpoints that don't belong to any resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers liveness probes
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
