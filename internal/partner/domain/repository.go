package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Partner) error
	Update(ctx context.Context, db *gorm.DB, p *Partner) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Partner, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Partner, error)
	List(ctx context.Context, db *gorm.DB) ([]Partner, error)
}
