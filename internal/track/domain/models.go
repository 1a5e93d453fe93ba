package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Track is a distributed recording (or webtoon BGM commission) whose
// revenue can be allocated to partners.
type Track struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Slug       string       `gorm:"type:text;not null;uniqueIndex:ux_tracks_slug"`
	Title      string       `gorm:"type:text;not null"`
	Artist     string       `gorm:"type:text;not null"`
	Album      *string      `gorm:"type:text"`
	ReleasedOn *time.Time
	Active     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Track) TableName() string { return "tracks" }
