package internal

import (
	"bitwise74/roleplay-api/internal/service"
	"bitwise74/roleplay-api/pkg/security"
	"time"

	"gorm.io/gorm"
)

// Deps is everything a handler needs
type Deps struct {
	DB            *gorm.DB
	Argon         *security.ArgonHash
	Sessions      *security.SessionIssuer
	Mailer        service.Mailer
	MailFrom      string
	ResetTokenTTL time.Duration
}
