package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
)

var (
	ErrInvalidYearMonth   = errors.New("invalid_year_month")
	ErrInvalidDistributor = errors.New("invalid_distributor")
	ErrInvalidDataSource  = errors.New("invalid_data_source")
	ErrInvalidTrack       = errors.New("invalid_track")
	ErrEmptyImport        = errors.New("empty_import")
	ErrNegativeRevenue    = errors.New("negative_revenue")
	ErrNetExceedsGross    = errors.New("net_exceeds_gross")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
)

// ImportRow is one line of a CMS revenue upload. TrackID is optional: some
// distributor statements carry channel-level revenue not tied to a track.
type ImportRow struct {
	TrackID       string
	GrossRevenue  decimal.Decimal
	NetRevenue    decimal.Decimal
	ManagementFee decimal.Decimal
	StreamCount   int64
	DownloadCount int64
}

type ImportRequest struct {
	DistributorID string
	YearMonth     string
	DataSource    string
	Rows          []ImportRow
}

type ImportResult struct {
	YearMonth    string `json:"year_month"`
	RowsImported int    `json:"rows_imported"`
	RowsReplaced int64  `json:"rows_replaced"`
}

type ListRequest struct {
	YearMonth     string
	DistributorID string
	Page          pagination.Pagination
}

type Service interface {
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
	// List returns one page of the month's rows plus a summary computed
	// over the whole filtered month, not just the page.
	List(ctx context.Context, req ListRequest) ([]MonthlyRevenue, *MonthSummary, *pagination.PageInfo, error)
}
