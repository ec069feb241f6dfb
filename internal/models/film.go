package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Film is one catalog entry, optionally carrying a stored poster image.
// FilePath is the public logical path of the poster (empty = no poster);
// whenever it is non-empty the file must exist in the poster store.
type Film struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	ReleaseDate  time.Time `json:"release_date"`
	DirectorName string    `gorm:"size:255" json:"director_name"`
	FileName     string    `gorm:"size:255" json:"file_name"`
	FilePath     string    `gorm:"size:512" json:"file_path"`

	// Version is the optimistic concurrency stamp; compared in the
	// UPDATE's WHERE clause and bumped on every successful write.
	Version int64 `gorm:"not null;default:1" json:"version"`

	// CreatedAt is also the stable paging sort key (with ID as tiebreak).
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT" json:"creator,omitempty"`
}

func (f *Film) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Version == 0 {
		f.Version = 1
	}
	return nil
}
