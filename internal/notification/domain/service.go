package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("notification_not_found")
	ErrInvalidPartner = errors.New("invalid_partner")
	ErrInvalidType    = errors.New("invalid_notification_type")
)

type EmitRequest struct {
	PartnerID           snowflake.ID
	PartnerSettlementID snowflake.ID
	Type                NotificationType
	Title               string
	Message             string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *SettlementNotification) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SettlementNotification, error)
	ListForPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, unreadOnly bool) ([]SettlementNotification, error)
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error)
}

type Service interface {
	// Emit inserts one notification row. Callers treat failures as
	// advisory: a failed emit never rolls back the state change that
	// produced it.
	Emit(ctx context.Context, req EmitRequest) (*SettlementNotification, error)
	ListForPartner(ctx context.Context, partnerID string, unreadOnly bool) ([]SettlementNotification, error)
	MarkRead(ctx context.Context, id string) (*SettlementNotification, error)
}
