// Package seed bootstraps reference data so a fresh install is usable
// without manual inserts.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	"gorm.io/gorm"
)

type defaultDistributor struct {
	Name           string
	CommissionRate string
}

var defaultDistributors = []defaultDistributor{
	{Name: "Spotify", CommissionRate: "15.00"},
	{Name: "Apple Music", CommissionRate: "15.00"},
	{Name: "YouTube Music", CommissionRate: "20.00"},
	{Name: "Melon", CommissionRate: "10.00"},
}

// EnsureDefaultDistributors inserts the stock distributor list if missing.
// Existing rows are never modified.
func EnsureDefaultDistributors(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range defaultDistributors {
			code := slug.Make(d.Name)

			var existing distributordomain.Distributor
			err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			rate, err := decimal.NewFromString(d.CommissionRate)
			if err != nil {
				return err
			}
			row := distributordomain.Distributor{
				ID:             node.Generate(),
				Code:           code,
				Name:           d.Name,
				CommissionRate: rate,
				CreatedAt:      time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDemoCatalog seeds one partner, one track and an active 50% contract
// between them. Local development convenience, gated by SEED_DEMO_DATA.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		partner, err := ensureDemoPartner(ctx, tx, node, now)
		if err != nil {
			return err
		}
		track, err := ensureDemoTrack(ctx, tx, node, now)
		if err != nil {
			return err
		}
		return ensureDemoContract(ctx, tx, node, partner.ID, track.ID, now)
	})
}

func ensureDemoPartner(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (*partnerdomain.Partner, error) {
	var existing partnerdomain.Partner
	err := tx.WithContext(ctx).Where("slug = ?", "demo-studio").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := partnerdomain.Partner{
		ID:        node.Generate(),
		Slug:      "demo-studio",
		Name:      "Demo Studio",
		Email:     "studio@example.com",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func ensureDemoTrack(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (*trackdomain.Track, error) {
	var existing trackdomain.Track
	err := tx.WithContext(ctx).Where("slug = ?", "demo-artist-first-light").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := trackdomain.Track{
		ID:        node.Generate(),
		Slug:      "demo-artist-first-light",
		Title:     "First Light",
		Artist:    "Demo Artist",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func ensureDemoContract(ctx context.Context, tx *gorm.DB, node *snowflake.Node, partnerID, trackID snowflake.ID, now time.Time) error {
	var existing contractdomain.PartnerTrackContract
	err := tx.WithContext(ctx).
		Where("partner_id = ? AND track_id = ? AND active = ?", partnerID, trackID, true).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := contractdomain.PartnerTrackContract{
		ID:        node.Generate(),
		PartnerID: partnerID,
		TrackID:   trackID,
		ShareRate: decimal.NewFromInt(50),
		Role:      contractdomain.RoleArtist,
		StartDate: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&row).Error
}
