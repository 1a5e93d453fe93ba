package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("distributor_not_found")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidCommissionRate = errors.New("invalid_commission_rate")
	ErrCodeTaken             = errors.New("distributor_code_taken")
)

type CreateRequest struct {
	Name           string
	CommissionRate decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Distributor, error)
	GetByID(ctx context.Context, id string) (*Distributor, error)
	List(ctx context.Context) ([]Distributor, error)
}
