package models

import (
	"time"
)

type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`

	// Owning user. Set at creation, never reassigned by updates.
	UserID uint `gorm:"not null;index" json:"user_id"`
}
