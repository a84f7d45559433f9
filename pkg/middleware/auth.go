package middleware

import (
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/pkg/apierr"
	"bitwise74/roleplay-api/pkg/security"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware requires a bearer token that was issued by s and that
// still has a row in api_tokens. On success userID and apiTokenID are set on
// the context.
func NewAuthMiddleware(db *gorm.DB, s *security.SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierr.Abort(c, apierr.Unauthorized("Missing or malformed authorization header"))
			return
		}

		userID, err := s.Parse(raw)
		if err != nil {
			zap.L().Debug("Rejected bearer token", zap.Error(err), zap.String("requestID", requestID))
			apierr.Abort(c, apierr.Unauthorized("Authorization token invalid"))
			return
		}

		var token model.ApiToken

		err = db.
			Where("token_hash = ? AND user_id = ? AND expires_at > ?", security.HashToken(raw), userID, time.Now().UTC()).
			First(&token).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierr.Abort(c, apierr.Unauthorized("Authorization token expired or revoked. Please log in again"))
				return
			}

			apierr.Internal(c, err, "Failed to look up session token")
			return
		}

		var users int64

		err = db.Model(&model.User{}).
			Where("id = ?", userID).
			Count(&users).
			Error
		if err != nil {
			apierr.Internal(c, err, "Failed to check if user exists")
			return
		}

		if users == 0 {
			apierr.Abort(c, apierr.Unauthorized("User no longer exists"))
			return
		}

		c.Set("userID", userID)
		c.Set("apiTokenID", token.ID)
		c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the actor set by the auth middleware
func UserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
