// Package request contains the table join-request endpoints
package request

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/util"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestList returns every pending request on the tables of the master
// given in the query string. The table in the path is not used. Only that
// master may list them, anyone else gets 403, so pending requesters aren't
// exposed to other users.
func RequestList(c *gin.Context, d *internal.Deps) {
	raw, present := c.GetQuery("master")

	master, ok := util.ParseUint(raw)
	if !ok {
		var errs validators.Errors
		if !present || raw == "" {
			errs.Add("master", "required", validators.ErrRequired.Error())
		} else {
			errs.Add("master", "number", "master must be a user ID")
		}

		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	if !policy.CanListRequests(middleware.UserID(c), master) {
		apierr.Abort(c, apierr.Forbidden("You can only list requests for your own tables"))
		return
	}

	requests, err := store.PendingForMaster(d.DB.WithContext(c), master)
	if err != nil {
		apierr.Internal(c, err, "Failed to list table requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tableRequests": requests,
	})
}
