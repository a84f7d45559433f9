package table

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxShortText = 255

type createBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Location    string `json:"location"`
	Chronic     string `json:"chronic"`
	Master      *uint  `json:"master"`
}

func (b *createBody) validate() validators.Errors {
	var errs validators.Errors

	errs.Check("name", validators.TextValidator(b.Name, maxShortText))
	errs.Check("description", validators.TextValidator(b.Description, 0))
	errs.Check("schedule", validators.TextValidator(b.Schedule, maxShortText))
	errs.Check("location", validators.TextValidator(b.Location, maxShortText))
	errs.Check("chronic", validators.TextValidator(b.Chronic, 0))

	if b.Master == nil || *b.Master == 0 {
		errs.Add("master", "required", validators.ErrRequired.Error())
	}

	return errs
}

func TableCreate(c *gin.Context, d *internal.Deps) {
	var data createBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	if errs := data.validate(); len(errs) > 0 {
		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	db := d.DB.WithContext(c)

	var count int64
	if err := db.Model(&model.User{}).Where("id = ?", *data.Master).Count(&count).Error; err != nil {
		apierr.Internal(c, err, "Failed to check if master exists")
		return
	}

	if count == 0 {
		var errs validators.Errors
		errs.Add("master", "exists", "master must be an existing user")

		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	t := model.Table{
		Name:        strings.TrimSpace(data.Name),
		Description: strings.TrimSpace(data.Description),
		Schedule:    strings.TrimSpace(data.Schedule),
		Location:    strings.TrimSpace(data.Location),
		Chronic:     strings.TrimSpace(data.Chronic),
		Master:      *data.Master,
	}

	if err := store.CreateTable(db, &t); err != nil {
		apierr.Internal(c, err, "Failed to create table")
		return
	}

	if err := store.HydrateTable(db, &t); err != nil {
		apierr.Internal(c, err, "Failed to load table players")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"table": t,
	})
}
