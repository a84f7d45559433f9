// Package session contains the login and logout endpoints
package session

import (
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/internal/store"
	"bitwise74/roleplay-api/pkg/apierr"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errInvalidCredentials = apierr.BadRequest(http.StatusBadRequest, "invalid credentials")

func SessionCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data loginBody
	if !apierr.BindJSON(c, &data) {
		return
	}

	data.Email = strings.TrimSpace(data.Email)

	// Every failure looks the same to the client
	if data.Email == "" || data.Password == "" {
		apierr.Abort(c, errInvalidCredentials)
		return
	}

	db := d.DB.WithContext(c)

	var user model.User
	if err := db.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if store.IsNotFound(err) {
			zap.L().Debug("Login for unknown email", zap.String("requestID", requestID))
			apierr.Abort(c, errInvalidCredentials)
			return
		}

		apierr.Internal(c, err, "Failed to fetch user")
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		apierr.Internal(c, err, "Failed to verify password")
		return
	}

	if !ok {
		apierr.Abort(c, errInvalidCredentials)
		return
	}

	sess, err := d.Sessions.Issue(user.ID)
	if err != nil {
		apierr.Internal(c, err, "Failed to issue session token")
		return
	}

	if _, err := store.CreateSession(db, user.ID, sess); err != nil {
		apierr.Internal(c, err, "Failed to store session token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": user,
		"token": gin.H{
			"type":       store.SessionTokenType,
			"token":      sess.Token,
			"expires_at": sess.ExpiresAt,
		},
	})
}
