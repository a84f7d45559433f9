package model

import "time"

const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
)

type TableRequest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tables_requests_user_table" json:"user_id"`
	TableID   uint      `gorm:"not null;uniqueIndex:idx_tables_requests_user_table;index" json:"table_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:'PENDING';check:chk_tables_requests_status,status IN ('PENDING','ACCEPTED')" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Table *Table `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TableRequest) TableName() string {
	return "tables_requests"
}

// TableRequestView is what a master sees when listing pending requests
type TableRequestView struct {
	ID      uint         `json:"id"`
	TableID uint         `json:"table_id"`
	UserID  uint         `json:"user_id"`
	Status  string       `json:"status"`
	Table   TableSummary `json:"table"`
	User    UserSummary  `json:"user"`
}
