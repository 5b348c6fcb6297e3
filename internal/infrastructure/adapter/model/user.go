package model

import (
	"time"
)

// User represents the database model for users. The primary key is the chat
// platform user id, assigned externally, never auto-incremented.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Username  string    `gorm:"size:255"`
	Balance   int64     `gorm:"not null;default:0"` // cents
	IsAdmin   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
