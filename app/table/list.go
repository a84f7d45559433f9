package table

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/util"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 5
	maxLimit     = 100
)

func TableList(c *gin.Context, d *internal.Deps) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		apierr.Abort(c, apierr.BadRequest(http.StatusBadRequest, "Invalid page provided"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		apierr.Abort(c, apierr.BadRequest(http.StatusBadRequest, "Invalid limit provided"))
		return
	}

	var filter store.TableFilter

	if raw := c.Query("user"); raw != "" {
		userID, ok := util.ParseUint(raw)
		if !ok {
			apierr.Abort(c, apierr.BadRequest(http.StatusBadRequest, "Invalid user provided"))
			return
		}

		filter.User = userID
	}

	filter.Text = strings.TrimSpace(c.Query("text"))

	tables, err := store.ListTables(d.DB.WithContext(c), filter, page, limit)
	if err != nil {
		apierr.Internal(c, err, "Failed to list tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
	})
}
