package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() settlementdomain.Repository {
	return &repo{}
}

const aggregateColumns = `id, partner_id, year_month, total_gross_revenue, total_net_revenue,
	partner_share, management_fee, total_streams, total_downloads, status,
	confirmed_at, paid_at, payment_ref, created_at, updated_at`

func (r *repo) BeginRun(ctx context.Context, tx *gorm.DB, runID snowflake.ID, yearMonth string, now time.Time) error {
	insert := `INSERT INTO allocation_runs (id, year_month, partners_allocated, started_at)
		 VALUES (?, ?, 0, ?)
		 ON CONFLICT (year_month) DO NOTHING`
	if db.IsMySQL(tx) {
		insert = `INSERT IGNORE INTO allocation_runs (id, year_month, partners_allocated, started_at)
		 VALUES (?, ?, 0, ?)`
	}
	if err := tx.WithContext(ctx).Exec(insert, runID, yearMonth, now).Error; err != nil {
		return err
	}

	// SQLite has no FOR UPDATE; its single-writer model already
	// serializes allocation runs.
	if !db.SupportsRowLocks(tx) {
		return nil
	}
	return tx.WithContext(ctx).Exec(
		`SELECT id FROM allocation_runs WHERE year_month = ? FOR UPDATE`,
		yearMonth,
	).Error
}

func (r *repo) CompleteRun(ctx context.Context, tx *gorm.DB, yearMonth string, partners int, now time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE allocation_runs
		 SET partners_allocated = ?, started_at = ?, completed_at = ?
		 WHERE year_month = ?`,
		partners,
		now,
		now,
		yearMonth,
	).Error
}

func (r *repo) FindRun(ctx context.Context, db *gorm.DB, yearMonth string) (*settlementdomain.AllocationRun, error) {
	var run settlementdomain.AllocationRun
	err := db.WithContext(ctx).Raw(
		`SELECT id, year_month, partners_allocated, started_at, completed_at
		 FROM allocation_runs WHERE year_month = ?`,
		yearMonth,
	).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) FindAggregate(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, yearMonth string) (*settlementdomain.PartnerSettlement, error) {
	var s settlementdomain.PartnerSettlement
	err := db.WithContext(ctx).Raw(
		`SELECT `+aggregateColumns+`
		 FROM partner_settlements WHERE partner_id = ? AND year_month = ?`,
		partnerID,
		yearMonth,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) InsertAggregate(ctx context.Context, db *gorm.DB, s *settlementdomain.PartnerSettlement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO partner_settlements (
			id, partner_id, year_month, total_gross_revenue, total_net_revenue,
			partner_share, management_fee, total_streams, total_downloads, status,
			confirmed_at, paid_at, payment_ref, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.PartnerID,
		s.YearMonth,
		s.TotalGrossRevenue,
		s.TotalNetRevenue,
		s.PartnerShare,
		s.ManagementFee,
		s.TotalStreams,
		s.TotalDownloads,
		string(s.Status),
		s.ConfirmedAt,
		s.PaidAt,
		s.PaymentRef,
		s.CreatedAt,
		s.UpdatedAt,
	).Error
}

func (r *repo) UpdateAggregateAmounts(ctx context.Context, db *gorm.DB, s *settlementdomain.PartnerSettlement) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE partner_settlements
		 SET total_gross_revenue = ?, total_net_revenue = ?, partner_share = ?,
		     management_fee = ?, total_streams = ?, total_downloads = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		s.TotalGrossRevenue,
		s.TotalNetRevenue,
		s.PartnerShare,
		s.ManagementFee,
		s.TotalStreams,
		s.TotalDownloads,
		s.UpdatedAt,
		s.ID,
		string(settlementdomain.StatusPending),
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ReplaceDetails(ctx context.Context, db *gorm.DB, settlementID snowflake.ID, details []settlementdomain.PartnerSettlementDetail) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM partner_settlement_details WHERE partner_settlement_id = ?`,
		settlementID,
	).Error; err != nil {
		return err
	}
	for _, d := range details {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO partner_settlement_details (
				id, partner_settlement_id, track_id, distributor_id, source_revenue_id,
				gross_revenue, net_revenue, share_rate, partner_share,
				stream_count, download_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID,
			d.PartnerSettlementID,
			d.TrackID,
			d.DistributorID,
			d.SourceRevenueID,
			d.GrossRevenue,
			d.NetRevenue,
			d.ShareRate,
			d.PartnerShare,
			d.StreamCount,
			d.DownloadCount,
			d.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) ListDetails(ctx context.Context, db *gorm.DB, settlementID snowflake.ID) ([]settlementdomain.PartnerSettlementDetail, error) {
	var out []settlementdomain.PartnerSettlementDetail
	err := db.WithContext(ctx).Raw(
		`SELECT id, partner_settlement_id, track_id, distributor_id, source_revenue_id,
		        gross_revenue, net_revenue, share_rate, partner_share,
		        stream_count, download_count, created_at
		 FROM partner_settlement_details
		 WHERE partner_settlement_id = ?
		 ORDER BY track_id ASC, source_revenue_id ASC, id ASC`,
		settlementID,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*settlementdomain.PartnerSettlement, error) {
	var s settlementdomain.PartnerSettlement
	err := db.WithContext(ctx).Raw(
		`SELECT `+aggregateColumns+` FROM partner_settlements WHERE id = ?`,
		id,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter settlementdomain.ListFilter) ([]settlementdomain.PartnerSettlement, error) {
	query := `SELECT ` + aggregateColumns + ` FROM partner_settlements WHERE 1 = 1`
	args := []any{}
	if filter.PartnerID != nil {
		query += ` AND partner_id = ?`
		args = append(args, *filter.PartnerID)
	}
	if filter.YearMonth != "" {
		query += ` AND year_month = ?`
		args = append(args, filter.YearMonth)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.AfterYearMonth != "" {
		query += ` AND (year_month < ? OR (year_month = ? AND partner_id > ?))`
		args = append(args, filter.AfterYearMonth, filter.AfterYearMonth, filter.AfterPartnerID)
	}
	query += ` ORDER BY year_month DESC, partner_id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit+1)
	}

	var out []settlementdomain.PartnerSettlement
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) MarkConfirmed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE partner_settlements
		 SET status = ?, confirmed_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(settlementdomain.StatusConfirmed),
		now,
		now,
		id,
		string(settlementdomain.StatusPending),
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentRef string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE partner_settlements
		 SET status = ?, paid_at = ?, payment_ref = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(settlementdomain.StatusPaid),
		now,
		paymentRef,
		now,
		id,
		string(settlementdomain.StatusConfirmed),
	)
	return result.RowsAffected, result.Error
}
