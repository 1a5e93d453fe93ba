package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, rows []ledgerdomain.MonthlyRevenue) error {
	for _, row := range rows {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO monthly_revenues (
				id, distributor_id, track_id, year_month, gross_revenue, net_revenue,
				management_fee, stream_count, download_count, data_source, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID,
			row.DistributorID,
			row.TrackID,
			row.YearMonth,
			row.GrossRevenue,
			row.NetRevenue,
			row.ManagementFee,
			row.StreamCount,
			row.DownloadCount,
			row.DataSource,
			row.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteBatch(ctx context.Context, db *gorm.DB, distributorID snowflake.ID, yearMonth, dataSource string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM monthly_revenues
		 WHERE distributor_id = ? AND year_month = ? AND data_source = ?`,
		distributorID,
		yearMonth,
		dataSource,
	).Error
}

func (r *repo) ListMonth(ctx context.Context, db *gorm.DB, yearMonth string, distributorID *snowflake.ID, afterID snowflake.ID, limit int) ([]ledgerdomain.MonthlyRevenue, error) {
	query := `SELECT id, distributor_id, track_id, year_month, gross_revenue, net_revenue,
	                 management_fee, stream_count, download_count, data_source, created_at
	          FROM monthly_revenues
	          WHERE year_month = ?`
	args := []any{yearMonth}
	if distributorID != nil {
		query += ` AND distributor_id = ?`
		args = append(args, *distributorID)
	}
	if afterID != 0 {
		query += ` AND id > ?`
		args = append(args, afterID)
	}
	query += ` ORDER BY id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit+1)
	}

	var rows []ledgerdomain.MonthlyRevenue
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SummarizeMonth(ctx context.Context, db *gorm.DB, yearMonth string, distributorID *snowflake.ID) (*ledgerdomain.MonthSummary, error) {
	query := `SELECT COUNT(*) AS row_count,
	                 COALESCE(SUM(gross_revenue), 0) AS gross_revenue,
	                 COALESCE(SUM(net_revenue), 0) AS net_revenue,
	                 COALESCE(SUM(stream_count), 0) AS total_streams,
	                 COALESCE(SUM(download_count), 0) AS total_downloads
	          FROM monthly_revenues
	          WHERE year_month = ?`
	args := []any{yearMonth}
	if distributorID != nil {
		query += ` AND distributor_id = ?`
		args = append(args, *distributorID)
	}

	var summary ledgerdomain.MonthSummary
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&summary).Error; err != nil {
		return nil, err
	}
	summary.YearMonth = yearMonth
	return &summary, nil
}

func (r *repo) ListAllocatable(ctx context.Context, db *gorm.DB, yearMonth string) ([]ledgerdomain.MonthlyRevenue, error) {
	var rows []ledgerdomain.MonthlyRevenue
	err := db.WithContext(ctx).Raw(
		`SELECT id, distributor_id, track_id, year_month, gross_revenue, net_revenue,
		        management_fee, stream_count, download_count, data_source, created_at
		 FROM monthly_revenues
		 WHERE year_month = ? AND track_id IS NOT NULL
		 ORDER BY track_id ASC, id ASC`,
		yearMonth,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
