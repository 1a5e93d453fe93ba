// Package scheduler runs the periodic auto-allocation job: once the month
// rolls over, the previous month's ledger is allocated without an operator
// calling the admin API.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/tunebridge/tunebridge/internal/clock"
	settlementdomain "github.com/tunebridge/tunebridge/internal/settlement/domain"
	"github.com/tunebridge/tunebridge/pkg/yearmonth"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	SettlementSvc settlementdomain.Service
	Repo          settlementdomain.Repository
	Config        Config `optional:"true"`
}

type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	settlementSvc settlementdomain.Service
	repo          settlementdomain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.SettlementSvc == nil || p.Repo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		settlementSvc: p.SettlementSvc,
		repo:          p.Repo,
	}, nil
}

// RunOnce allocates the previous month unless a completed run already
// covers it. Errors are returned for the caller to log; a month whose
// settlements are locked is treated as done.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	yearMonth := yearmonth.Previous(s.clock.Now())

	run, err := s.repo.FindRun(ctx, s.db, yearMonth)
	if err != nil {
		return err
	}
	if run != nil && run.CompletedAt != nil {
		return nil
	}

	result, err := s.settlementSvc.Allocate(ctx, yearMonth)
	if err != nil {
		if errors.Is(err, settlementdomain.ErrSettlementLocked) {
			s.log.Info("skipping month with committed settlements",
				zap.String("year_month", yearMonth),
			)
			return nil
		}
		return err
	}

	s.log.Info("auto-allocation completed",
		zap.String("year_month", yearMonth),
		zap.Int("allocated_partners", result.AllocatedPartners),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
