package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tunebridge/tunebridge/internal/clock"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	"github.com/tunebridge/tunebridge/pkg/db"
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
	Repo  distributordomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  distributordomain.Repository
}

func New(p Params) distributordomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("distributor.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req distributordomain.CreateRequest) (*distributordomain.Distributor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, distributordomain.ErrInvalidName
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, distributordomain.ErrInvalidCommissionRate
	}

	d := &distributordomain.Distributor{
		ID:             s.genID.Generate(),
		Code:           slug.Make(name),
		Name:           name,
		CommissionRate: req.CommissionRate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByCode(ctx, tx, d.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return distributordomain.ErrCodeTaken
		}
		d.CreatedAt = s.clock.Now().UTC()
		return s.repo.Insert(ctx, tx, d)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, distributordomain.ErrCodeTaken
		}
		return nil, err
	}

	s.log.Info("distributor created", zap.String("id", d.ID.String()), zap.String("code", d.Code))
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*distributordomain.Distributor, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, distributordomain.ErrNotFound
	}
	d, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, distributordomain.ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]distributordomain.Distributor, error) {
	return s.repo.List(ctx, s.db)
}
