package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	PartnerID *snowflake.ID
	YearMonth string
	Status    SettlementStatus

	// Keyset position: rows strictly after (AfterYearMonth, AfterPartnerID)
	// in the list's (year_month DESC, partner_id ASC) order. Limit > 0 makes
	// the repository fetch one extra row so the caller can detect more pages.
	AfterYearMonth string
	AfterPartnerID snowflake.ID
	Limit          int
}

type Repository interface {
	// BeginRun upserts the month's allocation_runs row and takes a row
	// lock on it, serializing concurrent allocation of the same month.
	BeginRun(ctx context.Context, db *gorm.DB, runID snowflake.ID, yearMonth string, now time.Time) error
	CompleteRun(ctx context.Context, db *gorm.DB, yearMonth string, partners int, now time.Time) error
	FindRun(ctx context.Context, db *gorm.DB, yearMonth string) (*AllocationRun, error)

	FindAggregate(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, yearMonth string) (*PartnerSettlement, error)
	InsertAggregate(ctx context.Context, db *gorm.DB, s *PartnerSettlement) error
	// UpdateAggregateAmounts overwrites the computed fields of a pending
	// settlement; the status guard is part of the statement.
	UpdateAggregateAmounts(ctx context.Context, db *gorm.DB, s *PartnerSettlement) (int64, error)
	ReplaceDetails(ctx context.Context, db *gorm.DB, settlementID snowflake.ID, details []PartnerSettlementDetail) error
	ListDetails(ctx context.Context, db *gorm.DB, settlementID snowflake.ID) ([]PartnerSettlementDetail, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PartnerSettlement, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]PartnerSettlement, error)

	MarkConfirmed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentRef string, now time.Time) (int64, error)
}
