package password

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/security"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (b *resetBody) validate() validators.Errors {
	var errs validators.Errors

	errs.Check("token", validators.TextValidator(b.Token, 0))
	errs.Check("password", validators.PasswordValidator(b.Password))

	return errs
}

func ResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	if errs := data.validate(); len(errs) > 0 {
		apierr.Abort(c, apierr.Validation(errs))
		return
	}

	db := d.DB.WithContext(c)

	token, err := store.FindResetToken(db, data.Token)
	if err != nil {
		if store.IsNotFound(err) {
			apierr.Abort(c, apierr.NotFound("Reset token not found"))
			return
		}

		apierr.Internal(c, err, "Failed to fetch reset token")
		return
	}

	if security.ResetTokenExpired(token, d.ResetTokenTTL, time.Now()) {
		if err := store.DeleteResetToken(db, token.ID); err != nil {
			apierr.Internal(c, err, "Failed to delete expired reset token")
			return
		}

		apierr.Abort(c, apierr.TokenExpired("token has expired"))
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		apierr.Internal(c, err, "Failed to hash password")
		return
	}

	if err := store.ConsumeResetToken(db, token, hash); err != nil {
		if store.IsNotFound(err) {
			apierr.Abort(c, apierr.NotFound("Reset token not found"))
			return
		}

		apierr.Internal(c, err, "Failed to reset password")
		return
	}

	c.Status(http.StatusNoContent)
}
