package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contractdomain.Repository {
	return &repo{}
}

const columns = `id, partner_id, track_id, share_rate, role, start_date, end_date, active, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *contractdomain.PartnerTrackContract) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO partner_track_contracts (
			id, partner_id, track_id, share_rate, role, start_date, end_date, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.PartnerID,
		c.TrackID,
		c.ShareRate,
		string(c.Role),
		c.StartDate,
		c.EndDate,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *contractdomain.PartnerTrackContract) error {
	return db.WithContext(ctx).Exec(
		`UPDATE partner_track_contracts
		 SET share_rate = ?, role = ?, end_date = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		c.ShareRate,
		string(c.Role),
		c.EndDate,
		c.Active,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contractdomain.PartnerTrackContract, error) {
	var c contractdomain.PartnerTrackContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM partner_track_contracts WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindActivePair(ctx context.Context, db *gorm.DB, partnerID, trackID snowflake.ID) (*contractdomain.PartnerTrackContract, error) {
	var c contractdomain.PartnerTrackContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM partner_track_contracts
		 WHERE partner_id = ? AND track_id = ? AND active = ?
		 LIMIT 1`,
		partnerID,
		trackID,
		true,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, partnerID, trackID *snowflake.ID) ([]contractdomain.PartnerTrackContract, error) {
	query := `SELECT ` + columns + ` FROM partner_track_contracts WHERE 1 = 1`
	args := []any{}
	if partnerID != nil {
		query += ` AND partner_id = ?`
		args = append(args, *partnerID)
	}
	if trackID != nil {
		query += ` AND track_id = ?`
		args = append(args, *trackID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var out []contractdomain.PartnerTrackContract
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ActiveForTrack(ctx context.Context, db *gorm.DB, trackID snowflake.ID, asOf time.Time) ([]contractdomain.PartnerTrackContract, error) {
	var out []contractdomain.PartnerTrackContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM partner_track_contracts
		 WHERE track_id = ?
		   AND active = ?
		   AND start_date <= ?
		   AND (end_date IS NULL OR end_date > ?)
		 ORDER BY partner_id ASC, id ASC`,
		trackID,
		true,
		asOf,
		asOf,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
