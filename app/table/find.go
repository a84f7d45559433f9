// Package table contains the endpoints for tables and their players
package table

import (
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Find loads the table named by the :id path parameter. It aborts with 404
// when there is none.
func Find(c *gin.Context, db *gorm.DB) (*model.Table, bool) {
	id, ok := util.ParamUint(c, "id")
	if !ok {
		apierr.Abort(c, apierr.NotFound("Table not found"))
		return nil, false
	}

	var t model.Table
	if err := db.First(&t, id).Error; err != nil {
		if store.IsNotFound(err) {
			apierr.Abort(c, apierr.NotFound("Table not found"))
			return nil, false
		}

		apierr.Internal(c, err, "Failed to fetch table")
		return nil, false
	}

	return &t, true
}
