package session

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionDestroy revokes the token the request was authenticated with
func SessionDestroy(c *gin.Context, d *internal.Deps) {
	tokenID := c.GetUint("apiTokenID")

	if err := store.DeleteSession(d.DB.WithContext(c), tokenID); err != nil {
		apierr.Internal(c, err, "Failed to revoke session token")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
