package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MonthlyRevenue is one raw revenue fact: what a distributor reported for a
// track in a given month. Rows are written by the CMS import and never
// touched by allocation; re-importing a (distributor, month, source) batch
// replaces its rows wholesale.
type MonthlyRevenue struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	DistributorID snowflake.ID    `gorm:"not null;index"`
	TrackID       *snowflake.ID   `gorm:"index"`
	YearMonth     string          `gorm:"type:text;not null;index:ix_monthly_revenues_year_month"`
	GrossRevenue  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	NetRevenue    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ManagementFee decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	StreamCount   int64           `gorm:"not null;default:0"`
	DownloadCount int64           `gorm:"not null;default:0"`
	DataSource    string          `gorm:"type:text;not null"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MonthlyRevenue) TableName() string { return "monthly_revenues" }

// MonthSummary aggregates a month across distributors.
type MonthSummary struct {
	YearMonth      string          `json:"year_month"`
	RowCount       int64           `json:"row_count"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
	TotalStreams   int64           `json:"total_streams"`
	TotalDownloads int64           `json:"total_downloads"`
}
