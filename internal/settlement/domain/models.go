package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SettlementStatus is the payout lifecycle of a partner's monthly
// settlement. Transitions only move forward: pending → confirmed → paid.
type SettlementStatus string

const (
	StatusPending   SettlementStatus = "pending"
	StatusConfirmed SettlementStatus = "confirmed"
	StatusPaid      SettlementStatus = "paid"
)

// ParseStatus validates a client-supplied status string.
func ParseStatus(raw string) (SettlementStatus, error) {
	switch SettlementStatus(raw) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusPaid:
		return StatusPaid, nil
	default:
		return "", ErrInvalidStatus
	}
}

// PartnerSettlement is a partner's aggregated monthly payout record, one
// per (partner, month). Amounts are written by the allocation engine only
// while status is pending; status is mutated only by the lifecycle manager.
type PartnerSettlement struct {
	ID                snowflake.ID     `gorm:"primaryKey"`
	PartnerID         snowflake.ID     `gorm:"not null;uniqueIndex:ux_partner_settlements_partner_month,priority:1"`
	YearMonth         string           `gorm:"type:text;not null;uniqueIndex:ux_partner_settlements_partner_month,priority:2"`
	TotalGrossRevenue decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	TotalNetRevenue   decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	PartnerShare      decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	ManagementFee     decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	TotalStreams      int64            `gorm:"not null;default:0"`
	TotalDownloads    int64            `gorm:"not null;default:0"`
	Status            SettlementStatus `gorm:"type:text;not null;index:ix_partner_settlements_status"`
	ConfirmedAt       *time.Time
	PaidAt            *time.Time
	PaymentRef        *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PartnerSettlement) TableName() string { return "partner_settlements" }

// PartnerSettlementDetail is the per-track, per-source-row breakdown behind
// an aggregate. Details are replaced wholesale on re-allocation, never
// merged.
type PartnerSettlementDetail struct {
	ID                  snowflake.ID    `gorm:"primaryKey"`
	PartnerSettlementID snowflake.ID    `gorm:"not null;index:ix_settlement_details_settlement"`
	TrackID             snowflake.ID    `gorm:"not null;index"`
	DistributorID       snowflake.ID    `gorm:"not null"`
	SourceRevenueID     snowflake.ID    `gorm:"not null"`
	GrossRevenue        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	NetRevenue          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ShareRate           decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	PartnerShare        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	StreamCount         int64           `gorm:"not null;default:0"`
	DownloadCount       int64           `gorm:"not null;default:0"`
	CreatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PartnerSettlementDetail) TableName() string { return "partner_settlement_details" }

// AllocationRun is the per-month serialization point and audit record for
// the allocation engine. Concurrent runs for the same month queue on this
// row; runs for different months do not contend.
type AllocationRun struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	YearMonth         string       `gorm:"type:text;not null;uniqueIndex:ux_allocation_runs_year_month"`
	PartnersAllocated int          `gorm:"not null;default:0"`
	StartedAt         time.Time    `gorm:"not null"`
	CompletedAt       *time.Time
}

// TableName sets the database table name.
func (AllocationRun) TableName() string { return "allocation_runs" }
