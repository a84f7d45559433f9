package request

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// findDecidable loads the request named by the path and checks that the
// actor is the master of its table
func findDecidable(c *gin.Context, db *gorm.DB) (*model.TableRequest, bool) {
	tableID, ok := util.ParamUint(c, "id")
	if !ok {
		apierr.Abort(c, apierr.NotFound("Table request not found"))
		return nil, false
	}

	requestID, ok := util.ParamUint(c, "requestId")
	if !ok {
		apierr.Abort(c, apierr.NotFound("Table request not found"))
		return nil, false
	}

	r, err := store.FindRequest(db, tableID, requestID)
	if err != nil {
		if store.IsNotFound(err) {
			apierr.Abort(c, apierr.NotFound("Table request not found"))
			return nil, false
		}

		apierr.Internal(c, err, "Failed to fetch table request")
		return nil, false
	}

	var t model.Table
	if err := db.First(&t, r.TableID).Error; err != nil {
		apierr.Internal(c, err, "Failed to fetch table")
		return nil, false
	}

	if !policy.CanDecideRequest(middleware.UserID(c), &t) {
		apierr.Abort(c, apierr.Forbidden("Only the master can decide on this request"))
		return nil, false
	}

	return r, true
}

func RequestAccept(c *gin.Context, d *internal.Deps) {
	db := d.DB.WithContext(c)

	r, ok := findDecidable(c, db)
	if !ok {
		return
	}

	if err := store.AcceptRequest(db, r); err != nil {
		if errors.Is(err, store.ErrRequestNotPending) {
			apierr.Abort(c, apierr.Conflict("table request is not pending"))
			return
		}

		apierr.Internal(c, err, "Failed to accept table request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tableRequest": r,
	})
}

func RequestReject(c *gin.Context, d *internal.Deps) {
	db := d.DB.WithContext(c)

	r, ok := findDecidable(c, db)
	if !ok {
		return
	}

	if err := store.RejectRequest(db, r); err != nil {
		if errors.Is(err, store.ErrRequestNotPending) {
			apierr.Abort(c, apierr.Conflict("table request is not pending"))
			return
		}

		apierr.Internal(c, err, "Failed to reject table request")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
