package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tunebridge/tunebridge/internal/clock"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
	"github.com/tunebridge/tunebridge/pkg/yearmonth"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  ledgerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  ledgerdomain.Repository
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Import(ctx context.Context, req ledgerdomain.ImportRequest) (*ledgerdomain.ImportResult, error) {
	if err := yearmonth.Validate(req.YearMonth); err != nil {
		return nil, ledgerdomain.ErrInvalidYearMonth
	}
	distributorID, err := snowflake.ParseString(strings.TrimSpace(req.DistributorID))
	if err != nil || distributorID == 0 {
		return nil, ledgerdomain.ErrInvalidDistributor
	}
	dataSource := strings.TrimSpace(req.DataSource)
	if dataSource == "" {
		return nil, ledgerdomain.ErrInvalidDataSource
	}
	if len(req.Rows) == 0 {
		return nil, ledgerdomain.ErrEmptyImport
	}

	now := s.clock.Now().UTC()
	rows := make([]ledgerdomain.MonthlyRevenue, 0, len(req.Rows))
	for _, in := range req.Rows {
		if in.GrossRevenue.IsNegative() || in.NetRevenue.IsNegative() || in.ManagementFee.IsNegative() {
			return nil, ledgerdomain.ErrNegativeRevenue
		}
		if in.NetRevenue.GreaterThan(in.GrossRevenue) {
			return nil, ledgerdomain.ErrNetExceedsGross
		}

		var trackID *snowflake.ID
		if trimmed := strings.TrimSpace(in.TrackID); trimmed != "" {
			parsed, err := snowflake.ParseString(trimmed)
			if err != nil {
				return nil, ledgerdomain.ErrInvalidTrack
			}
			trackID = &parsed
		}

		rows = append(rows, ledgerdomain.MonthlyRevenue{
			ID:            s.genID.Generate(),
			DistributorID: distributorID,
			TrackID:       trackID,
			YearMonth:     req.YearMonth,
			GrossRevenue:  in.GrossRevenue.Round(2),
			NetRevenue:    in.NetRevenue.Round(2),
			ManagementFee: in.ManagementFee.Round(2),
			StreamCount:   in.StreamCount,
			DownloadCount: in.DownloadCount,
			DataSource:    dataSource,
			CreatedAt:     now,
		})
	}

	var replaced int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.WithContext(ctx).Exec(
			`DELETE FROM monthly_revenues
			 WHERE distributor_id = ? AND year_month = ? AND data_source = ?`,
			distributorID,
			req.YearMonth,
			dataSource,
		)
		if result.Error != nil {
			return result.Error
		}
		replaced = result.RowsAffected
		return s.repo.InsertBatch(ctx, tx, rows)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("revenue imported",
		zap.String("year_month", req.YearMonth),
		zap.String("distributor_id", distributorID.String()),
		zap.String("data_source", dataSource),
		zap.Int("rows", len(rows)),
		zap.Int64("replaced", replaced),
	)

	return &ledgerdomain.ImportResult{
		YearMonth:    req.YearMonth,
		RowsImported: len(rows),
		RowsReplaced: replaced,
	}, nil
}

func (s *Service) List(ctx context.Context, req ledgerdomain.ListRequest) ([]ledgerdomain.MonthlyRevenue, *ledgerdomain.MonthSummary, *pagination.PageInfo, error) {
	if err := yearmonth.Validate(req.YearMonth); err != nil {
		return nil, nil, nil, ledgerdomain.ErrInvalidYearMonth
	}

	var distributorID *snowflake.ID
	if trimmed := strings.TrimSpace(req.DistributorID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, nil, nil, ledgerdomain.ErrInvalidDistributor
		}
		distributorID = &parsed
	}

	var afterID snowflake.ID
	if token := strings.TrimSpace(req.Page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, nil, nil, ledgerdomain.ErrInvalidPageToken
		}
		afterID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, nil, ledgerdomain.ErrInvalidPageToken
		}
	}

	limit := req.Page.Limit()
	rows, err := s.repo.ListMonth(ctx, s.db, req.YearMonth, distributorID, afterID, limit)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, page, err := pagination.TrimPage(rows, limit, func(row ledgerdomain.MonthlyRevenue) pagination.Cursor {
		return pagination.Cursor{ID: row.ID.String()}
	})
	if err != nil {
		return nil, nil, nil, err
	}

	// The summary always covers the whole filtered month.
	summary, err := s.repo.SummarizeMonth(ctx, s.db, req.YearMonth, distributorID)
	if err != nil {
		return nil, nil, nil, err
	}

	return rows, summary, page, nil
}
