package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, rows []MonthlyRevenue) error
	DeleteBatch(ctx context.Context, db *gorm.DB, distributorID snowflake.ID, yearMonth, dataSource string) error
	// ListMonth pages through the month in id order. afterID == 0 starts at
	// the beginning; limit > 0 over-fetches by one row for page detection.
	ListMonth(ctx context.Context, db *gorm.DB, yearMonth string, distributorID *snowflake.ID, afterID snowflake.ID, limit int) ([]MonthlyRevenue, error)
	SummarizeMonth(ctx context.Context, db *gorm.DB, yearMonth string, distributorID *snowflake.ID) (*MonthSummary, error)
	// ListAllocatable returns the month's rows that carry a track reference,
	// the only rows the allocation engine reads.
	ListAllocatable(ctx context.Context, db *gorm.DB, yearMonth string) ([]MonthlyRevenue, error)
}
