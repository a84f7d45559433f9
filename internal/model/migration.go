package model

import "time"

// Migration records a named data migration that was applied on top of the
// auto-migrated schema
type Migration struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}
