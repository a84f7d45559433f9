package service

import (
	"bitwise74/roleplay-api/internal/store"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup removes credentials that can't be used anymore: expired
// session tokens and reset tokens older than ResetRetention
type TokenCleanup struct {
	DB             *gorm.DB
	ResetRetention time.Duration
	Now            func() time.Time
}

func (t *TokenCleanup) Run() {
	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}

	sessions, err := store.PurgeExpiredSessions(t.DB, now)
	if err != nil {
		zap.L().Error("Failed to clean up expired session tokens", zap.Error(err))
	}

	resets, err := store.PurgeResetTokens(t.DB, now.Add(-t.ResetRetention))
	if err != nil {
		zap.L().Error("Failed to clean up stale reset tokens", zap.Error(err))
	}

	if sessions > 0 || resets > 0 {
		zap.L().Debug("Cleaned up tokens",
			zap.Int64("sessions", sessions),
			zap.Int64("resetTokens", resets),
		)
	}
}

// StartTokenCleanup schedules t on schedule using cron syntax. The returned
// scheduler has to be stopped by the caller.
func StartTokenCleanup(schedule string, t *TokenCleanup) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddJob(schedule, t); err != nil {
		return nil, err
	}

	c.Start()

	zap.L().Debug("Token cleanup attached", zap.String("schedule", schedule))
	return c, nil
}
