package table

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

func TableDelete(c *gin.Context, d *internal.Deps) {
	db := d.DB.WithContext(c)

	t, ok := Find(c, db)
	if !ok {
		return
	}

	if !policy.CanManageTable(middleware.UserID(c), t) {
		apierr.Abort(c, apierr.Forbidden("Only the master can delete this table"))
		return
	}

	if err := store.DeleteTable(db, t.ID); err != nil {
		apierr.Internal(c, err, "Failed to delete table")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
