package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// NotificationType classifies settlement notifications for the partner
// console.
type NotificationType string

const (
	TypeSettlementReady     NotificationType = "settlement_ready"
	TypeSettlementConfirmed NotificationType = "settlement_confirmed"
	TypePaymentComplete     NotificationType = "payment_complete"
	TypeGeneral             NotificationType = "general"
)

// SettlementNotification is an advisory record consumed by the partner
// console and downstream delivery channels. The settlement engine only ever
// inserts rows; reads and read-marking belong to the partner-facing API.
type SettlementNotification struct {
	ID                  snowflake.ID     `gorm:"primaryKey"`
	PartnerID           snowflake.ID     `gorm:"not null;index:ix_settlement_notifications_partner"`
	PartnerSettlementID snowflake.ID     `gorm:"not null;index"`
	Type                NotificationType `gorm:"type:text;not null"`
	Title               string           `gorm:"type:text;not null"`
	Message             string           `gorm:"type:text;not null"`
	Read                bool             `gorm:"column:is_read;not null;default:false"`
	ReadAt              *time.Time
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SettlementNotification) TableName() string { return "settlement_notifications" }
