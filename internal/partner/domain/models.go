package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Partner is a rights holder (composer, artist, label or webtoon studio)
// entitled to a contracted share of track revenue.
type Partner struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_partners_slug"`
	Name      string       `gorm:"type:text;not null"`
	Email     string       `gorm:"type:text;not null"`
	Active    bool         `gorm:"not null;default:true"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Partner) TableName() string { return "partners" }
