package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, c *PartnerTrackContract) error
	Update(ctx context.Context, db *gorm.DB, c *PartnerTrackContract) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PartnerTrackContract, error)
	FindActivePair(ctx context.Context, db *gorm.DB, partnerID, trackID snowflake.ID) (*PartnerTrackContract, error)
	List(ctx context.Context, db *gorm.DB, partnerID, trackID *snowflake.ID) ([]PartnerTrackContract, error)
	// ActiveForTrack returns the active contracts whose window covers asOf.
	ActiveForTrack(ctx context.Context, db *gorm.DB, trackID snowflake.ID, asOf time.Time) ([]PartnerTrackContract, error)
}
