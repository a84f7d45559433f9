package table

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Unknown keys are dropped while binding. master and id are read only so
// they are rejected instead.
type updateBody struct {
	ID     any `json:"id"`
	Master any `json:"master"`

	Name        *string `json:"name"`
	Description *string `json:"description"`
	Schedule    *string `json:"schedule"`
	Location    *string `json:"location"`
	Chronic     *string `json:"chronic"`
}

// fields returns the columns to write along with the validation errors of
// the provided values
func (b *updateBody) fields() (map[string]any, validators.Errors) {
	var errs validators.Errors
	fields := map[string]any{}

	if b.ID != nil {
		errs.Add("id", "readonly", "id can't be changed")
	}

	if b.Master != nil {
		errs.Add("master", "readonly", "master can't be changed")
	}

	for _, f := range []struct {
		column string
		value  *string
		max    int
	}{
		{"name", b.Name, maxShortText},
		{"description", b.Description, 0},
		{"schedule", b.Schedule, maxShortText},
		{"location", b.Location, maxShortText},
		{"chronic", b.Chronic, 0},
	} {
		if f.value == nil {
			continue
		}

		if err := validators.TextValidator(*f.value, f.max); err != nil {
			errs.Check(f.column, err)
			continue
		}

		fields[f.column] = strings.TrimSpace(*f.value)
	}

	return fields, errs
}

func TableUpdate(c *gin.Context, d *internal.Deps) {
	db := d.DB.WithContext(c)

	t, ok := Find(c, db)
	if !ok {
		return
	}

	if !policy.CanManageTable(middleware.UserID(c), t) {
		apierr.Abort(c, apierr.Forbidden("Only the master can update this table"))
		return
	}

	var data updateBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	fields, errs := data.fields()
	if len(errs) > 0 {
		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	if err := store.UpdateTable(db, t, fields); err != nil {
		apierr.Internal(c, err, "Failed to update table")
		return
	}

	if err := store.HydrateTable(db, t); err != nil {
		apierr.Internal(c, err, "Failed to load table players")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table": t,
	})
}
