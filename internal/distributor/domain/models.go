package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Distributor is a revenue source (streaming platform, download store or
// webtoon service) with the commission it retains before net revenue.
// Reference data: created by admins, never mutated afterwards.
type Distributor struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	Code           string          `gorm:"type:text;not null;uniqueIndex:ux_distributors_code"`
	Name           string          `gorm:"type:text;not null"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Distributor) TableName() string { return "distributors" }
