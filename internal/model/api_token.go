package model

import "time"

// ApiToken backs a bearer session. Only the SHA-256 of the bearer credential
// is stored.
type ApiToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Type      string    `gorm:"not null"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ApiToken) TableName() string {
	return "api_tokens"
}
