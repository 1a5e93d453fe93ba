package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ContractRole describes the capacity in which a partner holds rights on a
// track.
type ContractRole string

const (
	RoleComposer ContractRole = "composer"
	RoleLyricist ContractRole = "lyricist"
	RoleArtist   ContractRole = "artist"
	RoleLabel    ContractRole = "label"
)

// PartnerTrackContract entitles a partner to a share of a track's net
// revenue while the contract window is open. At most one active contract
// may exist per (partner, track) pair; share rates across partners on the
// same track are deliberately not constrained to sum to 100.
type PartnerTrackContract struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	PartnerID snowflake.ID    `gorm:"not null;index:ix_contracts_partner"`
	TrackID   snowflake.ID    `gorm:"not null;index:ix_contracts_track"`
	ShareRate decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Role      ContractRole    `gorm:"type:text;not null"`
	StartDate time.Time       `gorm:"not null"`
	EndDate   *time.Time
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PartnerTrackContract) TableName() string { return "partner_track_contracts" }

// Covers reports whether the contract window contains asOf. The window is
// half-open: [start, end or +infinity).
func (c PartnerTrackContract) Covers(asOf time.Time) bool {
	if asOf.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && !asOf.Before(*c.EndDate) {
		return false
	}
	return true
}
