package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DateCreated  time.Time `gorm:"not null" json:"dateCreated"`

	// Opaque bearer token, present only after a token has been issued.
	Token           *string    `gorm:"uniqueIndex" json:"-"`
	TokenExpiration *time.Time `json:"-"`

	Tasks []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"tasks"`
}
