package security

import (
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/pkg/util"
	"errors"
	"time"
)

const resetTokenSize = 32

func MakeResetToken(userID uint) (*model.PasswordResetToken, error) {
	if userID == 0 {
		return nil, errors.New("no user ID provided")
	}

	token, err := util.GenerateToken(resetTokenSize)
	if err != nil {
		return nil, err
	}

	return &model.PasswordResetToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
	}, nil
}

// ResetTokenExpired reports whether t is older than ttl at now
func ResetTokenExpired(t *model.PasswordResetToken, ttl time.Duration, now time.Time) bool {
	return now.Sub(t.CreatedAt) > ttl
}
