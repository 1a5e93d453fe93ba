package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("partner_not_found")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrSlugTaken    = errors.New("partner_slug_taken")
)

type CreateRequest struct {
	Name  string
	Email string
}

type UpdateRequest struct {
	ID     string
	Name   *string
	Email  *string
	Active *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Partner, error)
	Update(ctx context.Context, req UpdateRequest) (*Partner, error)
	GetByID(ctx context.Context, id string) (*Partner, error)
	List(ctx context.Context) ([]Partner, error)
}
