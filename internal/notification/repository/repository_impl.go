package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() notificationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *notificationdomain.SettlementNotification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO settlement_notifications (
			id, partner_id, partner_settlement_id, type, title, message, is_read, read_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.PartnerID,
		n.PartnerSettlementID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Read,
		n.ReadAt,
		n.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*notificationdomain.SettlementNotification, error) {
	var n notificationdomain.SettlementNotification
	err := db.WithContext(ctx).Raw(
		`SELECT id, partner_id, partner_settlement_id, type, title, message, is_read, read_at, created_at
		 FROM settlement_notifications WHERE id = ?`,
		id,
	).Scan(&n).Error
	if err != nil {
		return nil, err
	}
	if n.ID == 0 {
		return nil, nil
	}
	return &n, nil
}

func (r *repo) ListForPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, unreadOnly bool) ([]notificationdomain.SettlementNotification, error) {
	query := `SELECT id, partner_id, partner_settlement_id, type, title, message, is_read, read_at, created_at
	          FROM settlement_notifications
	          WHERE partner_id = ?`
	args := []any{partnerID}
	if unreadOnly {
		query += ` AND is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var out []notificationdomain.SettlementNotification
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE settlement_notifications
		 SET is_read = ?, read_at = COALESCE(read_at, ?)
		 WHERE id = ? AND is_read = ?`,
		true,
		now,
		id,
		false,
	)
	return result.RowsAffected, result.Error
}
