package store

import (
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/pkg/security"
	"time"

	"gorm.io/gorm"
)

const SessionTokenType = "bearer"

// CreateSession stores the hash of s for userID
func CreateSession(db *gorm.DB, userID uint, s *security.Session) (*model.ApiToken, error) {
	t := &model.ApiToken{
		UserID:    userID,
		Name:      "Opaque Access Token",
		Type:      SessionTokenType,
		TokenHash: s.Hash,
		ExpiresAt: s.ExpiresAt,
	}

	if err := db.Omit("User").Create(t).Error; err != nil {
		return nil, err
	}

	return t, nil
}

func DeleteSession(db *gorm.DB, id uint) error {
	return db.Delete(&model.ApiToken{}, id).Error
}

// PurgeExpiredSessions removes session rows that expired before now.
// Timestamps are stored in UTC, so now is compared in UTC as well.
func PurgeExpiredSessions(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now.UTC()).Delete(&model.ApiToken{})
	return res.RowsAffected, res.Error
}

// PurgeResetTokens removes reset tokens created before cutoff
func PurgeResetTokens(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("created_at < ?", cutoff.UTC()).Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
