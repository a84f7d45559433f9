package store

import (
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/pkg/security"

	"gorm.io/gorm"
)

// IssueResetToken replaces every reset token of userID with a new one and
// hands it to deliver. The token is only kept if deliver succeeds.
func IssueResetToken(db *gorm.DB, userID uint, deliver func(*model.PasswordResetToken) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}

		token, err := security.MakeResetToken(userID)
		if err != nil {
			return err
		}

		if err := tx.Omit("User").Create(token).Error; err != nil {
			return err
		}

		return deliver(token)
	})
}

func FindResetToken(db *gorm.DB, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken

	if err := db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}

	return &t, nil
}

func DeleteResetToken(db *gorm.DB, id uint) error {
	return db.Delete(&model.PasswordResetToken{}, id).Error
}

// ConsumeResetToken sets the password of the token's owner and deletes the
// token. If the token was consumed in the meantime gorm.ErrRecordNotFound is
// returned and the password stays unchanged.
func ConsumeResetToken(db *gorm.DB, t *model.PasswordResetToken, passwordHash string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.PasswordResetToken{}, t.ID)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.User{}).
			Where("id = ?", t.UserID).
			Update("password_hash", passwordHash).
			Error
	})
}
