package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tunebridge/tunebridge/internal/clock"
	"github.com/tunebridge/tunebridge/internal/config"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
	ledgerdomain "github.com/tunebridge/tunebridge/internal/ledger/domain"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
	obsmetrics "github.com/tunebridge/tunebridge/internal/observability/metrics"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/pkg/db/pagination"
	"github.com/tunebridge/tunebridge/pkg/yearmonth"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Rules        *config.SettlementRulesHolder
	Repo         settlementdomain.Repository
	LedgerRepo   ledgerdomain.Repository
	ContractRepo contractdomain.Repository
	NotifSvc     notificationdomain.Service
	Metrics      *obsmetrics.AllocationMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	rules        *config.SettlementRulesHolder
	repo         settlementdomain.Repository
	ledgerRepo   ledgerdomain.Repository
	contractRepo contractdomain.Repository
	notifSvc     notificationdomain.Service
	metrics      *obsmetrics.AllocationMetrics
}

func New(p Params) settlementdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("settlement.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		rules:        p.Rules,
		repo:         p.Repo,
		ledgerRepo:   p.LedgerRepo,
		contractRepo: p.ContractRepo,
		notifSvc:     p.NotifSvc,
		metrics:      p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req settlementdomain.ListRequest) ([]settlementdomain.PartnerSettlement, *pagination.PageInfo, error) {
	filter := settlementdomain.ListFilter{Limit: req.Page.Limit()}

	if trimmed := strings.TrimSpace(req.PartnerID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, nil, settlementdomain.ErrNotFound
		}
		filter.PartnerID = &parsed
	}
	if trimmed := strings.TrimSpace(req.YearMonth); trimmed != "" {
		if err := yearmonth.Validate(trimmed); err != nil {
			return nil, nil, settlementdomain.ErrInvalidYearMonth
		}
		filter.YearMonth = trimmed
	}
	if trimmed := strings.TrimSpace(req.Status); trimmed != "" {
		status, err := settlementdomain.ParseStatus(trimmed)
		if err != nil {
			return nil, nil, err
		}
		filter.Status = status
	}
	if token := strings.TrimSpace(req.Page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil || cursor.Key == "" {
			return nil, nil, settlementdomain.ErrInvalidPageToken
		}
		afterPartner, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, settlementdomain.ErrInvalidPageToken
		}
		filter.AfterYearMonth = cursor.Key
		filter.AfterPartnerID = afterPartner
	}

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}
	return pagination.TrimPage(rows, filter.Limit, func(row settlementdomain.PartnerSettlement) pagination.Cursor {
		return pagination.Cursor{Key: row.YearMonth, ID: row.PartnerID.String()}
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (*settlementdomain.PartnerSettlement, []settlementdomain.PartnerSettlementDetail, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, nil, settlementdomain.ErrNotFound
	}

	aggregate, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, nil, err
	}
	if aggregate == nil {
		return nil, nil, settlementdomain.ErrNotFound
	}

	details, err := s.repo.ListDetails(ctx, s.db, parsed)
	if err != nil {
		return nil, nil, err
	}
	return aggregate, details, nil
}
