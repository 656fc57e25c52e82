package models

import (
	"time"
)

// User represents a bettor in the system
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         *string   `gorm:"uniqueIndex" json:"email,omitempty"`
	Name          string    `gorm:"size:255" json:"name"`
	IRacingID     *int64    `gorm:"column:iracing_id;uniqueIndex" json:"iracing_id,omitempty"`
	WalletAddress *string   `gorm:"uniqueIndex;size:255" json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
