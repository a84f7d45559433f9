package table

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TableRemovePlayer takes a player off a table. The master stays no matter
// who asks.
func TableRemovePlayer(c *gin.Context, d *internal.Deps) {
	db := d.DB.WithContext(c)

	t, ok := Find(c, db)
	if !ok {
		return
	}

	playerID, ok := util.ParamUint(c, "playerId")
	if !ok {
		apierr.Abort(c, apierr.NotFound("Player not found"))
		return
	}

	if playerID == t.Master {
		apierr.Abort(c, apierr.BadRequest(http.StatusBadRequest, "cannot remove master from group"))
		return
	}

	if !policy.CanRemovePlayer(middleware.UserID(c), t, playerID) {
		apierr.Abort(c, apierr.Forbidden("Only the master or the player can do this"))
		return
	}

	if err := store.DetachPlayer(db, playerID, t.ID); err != nil {
		apierr.Internal(c, err, "Failed to remove player")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
