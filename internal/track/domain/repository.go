package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *Track) error
	Update(ctx context.Context, db *gorm.DB, t *Track) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Track, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Track, error)
	List(ctx context.Context, db *gorm.DB) ([]Track, error)
}
