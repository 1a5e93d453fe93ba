package domain

import (
	"context"

	"github.com/tunebridge/tunebridge/pkg/db/pagination"
)

// AllocationResult summarizes one allocation run.
type AllocationResult struct {
	YearMonth         string `json:"year_month"`
	AllocatedPartners int    `json:"allocated_partners"`
}

type TransitionRequest struct {
	SettlementID string
	To           SettlementStatus
	PaymentRef   string
}

type ListRequest struct {
	PartnerID string
	YearMonth string
	Status    string
	Page      pagination.Pagination
}

type Service interface {
	// Allocate distributes one month's ledger revenue to partners per
	// their contracted share rates. Idempotent while settlements are
	// pending; all-or-nothing per month.
	Allocate(ctx context.Context, yearMonth string) (*AllocationResult, error)

	// Transition advances a settlement along pending → confirmed → paid.
	Transition(ctx context.Context, req TransitionRequest) (*PartnerSettlement, error)

	List(ctx context.Context, req ListRequest) ([]PartnerSettlement, *pagination.PageInfo, error)
	GetByID(ctx context.Context, id string) (*PartnerSettlement, []PartnerSettlementDetail, error)
}
