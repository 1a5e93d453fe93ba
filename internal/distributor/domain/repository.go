package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, d *Distributor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Distributor, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Distributor, error)
	List(ctx context.Context, db *gorm.DB) ([]Distributor, error)
}
