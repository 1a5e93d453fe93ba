package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("contract_not_found")
	ErrInvalidPartner      = errors.New("invalid_partner")
	ErrInvalidTrack        = errors.New("invalid_track")
	ErrInvalidShareRate    = errors.New("invalid_share_rate")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrInvalidWindow       = errors.New("invalid_contract_window")
	ErrActiveContractTaken = errors.New("active_contract_exists")
)

type CreateRequest struct {
	PartnerID string
	TrackID   string
	ShareRate decimal.Decimal
	Role      string
	StartDate time.Time
	EndDate   *time.Time
}

type ListRequest struct {
	PartnerID string
	TrackID   string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PartnerTrackContract, error)
	Deactivate(ctx context.Context, id string) (*PartnerTrackContract, error)
	GetByID(ctx context.Context, id string) (*PartnerTrackContract, error)
	List(ctx context.Context, req ListRequest) ([]PartnerTrackContract, error)
	ActiveForTrack(ctx context.Context, trackID snowflake.ID, asOf time.Time) ([]PartnerTrackContract, error)
}
