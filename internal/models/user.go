package models

import "time"

// User represents an account that can sign in to the admin console.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string `gorm:"size:255"`
	LastName     string `gorm:"size:255"`
	PasswordHash string `gorm:"size:255;not null"`
	IsSuperuser  bool   `gorm:"not null;default:false;index"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
