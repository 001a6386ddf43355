package models

import "time"

// Game represents a catalog entry.
type Game struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:200;not null;index"`
	Description     string  `gorm:"type:text;not null;default:''"`
	Materials       *string `gorm:"type:text"`
	NumberOfPlayers string  `gorm:"size:50;not null"` // e.g. "5-10 players"
	Time            string  `gorm:"size:50;not null"` // e.g. "30 minutes"
	VideoLink       *string `gorm:"size:200"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// A game can sit in any number of folders.
	Folders []*Folder `gorm:"many2many:game_folders;constraint:OnDelete:CASCADE;"`
}

// FolderIDs returns the ids of the loaded folders, in load order.
func (g Game) FolderIDs() []uint {
	ids := make([]uint, 0, len(g.Folders))
	for _, f := range g.Folders {
		if f != nil {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// FolderNames returns the names of the loaded folders, in load order.
func (g Game) FolderNames() []string {
	names := make([]string, 0, len(g.Folders))
	for _, f := range g.Folders {
		if f != nil {
			names = append(names, f.Name)
		}
	}
	return names
}
