package request

import (
	"bitwise74/roleplay-api/app/table"
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RequestCreate(c *gin.Context, d *internal.Deps) {
	actor := middleware.UserID(c)
	db := d.DB.WithContext(c)

	t, ok := table.Find(c, db)
	if !ok {
		return
	}

	exists, err := store.HasRequest(db, actor, t.ID)
	if err != nil {
		apierr.Internal(c, err, "Failed to check for existing request")
		return
	}

	if exists {
		apierr.Abort(c, apierr.Conflict("table request already exists"))
		return
	}

	member, err := store.IsPlayer(db, actor, t.ID)
	if err != nil {
		apierr.Internal(c, err, "Failed to check table membership")
		return
	}

	if member {
		var errs validators.Errors
		errs.Add("user", "notMember", "user is already a player of this table")

		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	r, err := store.CreateRequest(db, actor, t.ID)
	if err != nil {
		if store.IsDuplicate(err) {
			apierr.Abort(c, apierr.Conflict("table request already exists"))
			return
		}

		apierr.Internal(c, err, "Failed to create table request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tableRequest": r,
	})
}
