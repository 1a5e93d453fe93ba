package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("track_not_found")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidArtist = errors.New("invalid_artist")
	ErrSlugTaken     = errors.New("track_slug_taken")
)

type CreateRequest struct {
	Title      string
	Artist     string
	Album      *string
	ReleasedOn *time.Time
}

type UpdateRequest struct {
	ID     string
	Title  *string
	Artist *string
	Album  *string
	Active *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Track, error)
	Update(ctx context.Context, req UpdateRequest) (*Track, error)
	GetByID(ctx context.Context, id string) (*Track, error)
	List(ctx context.Context) ([]Track, error)
}
