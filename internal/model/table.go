package model

import "time"

type Table struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Schedule    string    `gorm:"not null" json:"schedule"`
	Location    string    `gorm:"not null" json:"location"`
	Chronic     string    `gorm:"not null" json:"chronic"`
	Master      uint      `gorm:"not null;index" json:"master"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner *User `gorm:"foreignKey:Master" json:"-"`

	// Filled in by store.HydrateTables
	Players    []UserSummary `gorm:"-" json:"players"`
	MasterUser *UserSummary  `gorm:"-" json:"masterUser,omitempty"`
}

func (Table) TableName() string {
	return "tables"
}

// TablePlayer is a row of the table membership set. Rows go away with the
// table they point to.
type TablePlayer struct {
	UserID  uint `gorm:"primaryKey;autoIncrement:false"`
	TableID uint `gorm:"primaryKey;autoIncrement:false;index"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Table *Table `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
}

func (TablePlayer) TableName() string {
	return "tables_users"
}

type TableSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Master uint   `json:"master"`
}
