package user

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/policy"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/util"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type updateBody struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar"`
}

func (b *updateBody) validate() validators.Errors {
	var errs validators.Errors

	errs.Check("email", validators.EmailValidator(b.Email))
	errs.Check("password", validators.PasswordValidator(b.Password))

	if b.Avatar != nil {
		errs.Check("avatar", validators.URLValidator(*b.Avatar))
	}

	return errs
}

func UserUpdate(c *gin.Context, d *internal.Deps) {
	actor := middleware.UserID(c)

	id, ok := util.ParamUint(c, "id")
	if !ok {
		apierr.Abort(c, apierr.NotFound("User not found"))
		return
	}

	var data updateBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	data.Email = strings.TrimSpace(data.Email)

	if errs := data.validate(); len(errs) > 0 {
		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	db := d.DB.WithContext(c)

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		if store.IsNotFound(err) {
			apierr.Abort(c, apierr.NotFound("User not found"))
			return
		}

		apierr.Internal(c, err, "Failed to fetch user")
		return
	}

	if !policy.CanUpdateUser(actor, user.ID) {
		apierr.Abort(c, apierr.Forbidden("You can only update your own account"))
		return
	}

	taken, err := columnTaken(db, "email", data.Email, user.ID)
	if err != nil {
		apierr.Internal(c, err, "Failed to check if email is registered")
		return
	}

	if taken {
		apierr.Abort(c, apierr.Conflict("This email is already registered"))
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		apierr.Internal(c, err, "Failed to hash password")
		return
	}

	user.Email = data.Email
	user.PasswordHash = hash
	if data.Avatar != nil {
		user.Avatar = data.Avatar
	}

	if err := db.Save(&user).Error; err != nil {
		if store.IsDuplicate(err) {
			apierr.Abort(c, apierr.Conflict("This email is already registered"))
			return
		}

		apierr.Internal(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// columnTaken reports whether another user than except already uses value
// for column
func columnTaken(db *gorm.DB, column, value string, except uint) (bool, error) {
	var count int64

	err := db.Model(&model.User{}).
		Where(column+" = ? AND id <> ?", value, except).
		Count(&count).
		Error

	return count > 0, err
}
