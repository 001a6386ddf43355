package models

import "time"

// Folder is a named grouping of games (e.g. "Icebreakers", "Outdoor").
type Folder struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
