// Package password contains the password reset endpoints
package password

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/service"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/validators"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forgotBody struct {
	Email            string `json:"email"`
	ResetPasswordURL string `json:"resetPasswordUrl"`
}

func (b *forgotBody) validate() validators.Errors {
	var errs validators.Errors

	errs.Check("email", validators.EmailValidator(b.Email))
	errs.Check("resetPasswordUrl", validators.LinkValidator(b.ResetPasswordURL))

	return errs
}

// ForgotPassword mails a reset link to the owner of the given email. The
// response is the same whether or not the account exists.
func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data forgotBody
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
	if err := db.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if store.IsNotFound(err) {
			zap.L().Debug("Password reset for unknown email", zap.String("requestID", requestID))
			c.Status(http.StatusNoContent)
			return
		}

		apierr.Internal(c, err, "Failed to fetch user")
		return
	}

	err := store.IssueResetToken(db, user.ID, func(t *model.PasswordResetToken) error {
		return service.SendPasswordResetMail(c, d.Mailer, &service.PasswordResetMail{
			From:     d.MailFrom,
			To:       user.Email,
			Username: user.Username,
			BaseURL:  data.ResetPasswordURL,
			Token:    t.Token,
			TTL:      d.ResetTokenTTL.String(),
		})
	})
	if err != nil {
		apierr.Internal(c, err, "Failed to issue password reset token")
		return
	}

	c.Status(http.StatusNoContent)
}
