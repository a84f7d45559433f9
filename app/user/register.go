// Package user contains the account endpoints
package user

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUsernameLength = 50

type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (b *registerBody) validate() validators.Errors {
	var errs validators.Errors

	errs.Check("email", validators.EmailValidator(b.Email))
	errs.Check("username", validators.TextValidator(b.Username, maxUsernameLength))
	errs.Check("password", validators.PasswordValidator(b.Password))

	return errs
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data registerBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	data.Email = strings.TrimSpace(data.Email)
	data.Username = strings.TrimSpace(data.Username)

	if errs := data.validate(); len(errs) > 0 {
		zap.L().Debug("Invalid registration", zap.Error(errs), zap.String("requestID", requestID))
		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	db := d.DB.WithContext(c)

	taken, err := columnTaken(db, "email", data.Email, 0)
	if err != nil {
		apierr.Internal(c, err, "Failed to check if email is registered")
		return
	}

	if taken {
		apierr.Abort(c, apierr.Conflict("This email is already registered"))
		return
	}

	taken, err = columnTaken(db, "username", data.Username, 0)
	if err != nil {
		apierr.Internal(c, err, "Failed to check if username is taken")
		return
	}

	if taken {
		apierr.Abort(c, apierr.Conflict("This username is already taken"))
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		apierr.Internal(c, err, "Failed to hash password")
		return
	}

	user := model.User{
		Email:        data.Email,
		Username:     data.Username,
		PasswordHash: hash,
	}

	if err := db.Create(&user).Error; err != nil {
		if store.IsDuplicate(err) {
			apierr.Abort(c, apierr.Conflict("This email or username is already registered"))
			return
		}

		apierr.Internal(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": user,
	})
}
