package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/tunebridge/tunebridge/internal/clock"
	contractdomain "github.com/tunebridge/tunebridge/internal/contract/domain"
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
	Repo  contractdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  contractdomain.Repository
}

func New(p Params) contractdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("contract.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

var hundred = decimal.NewFromInt(100)

func (s *Service) Create(ctx context.Context, req contractdomain.CreateRequest) (*contractdomain.PartnerTrackContract, error) {
	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return nil, contractdomain.ErrInvalidPartner
	}
	trackID, err := snowflake.ParseString(strings.TrimSpace(req.TrackID))
	if err != nil || trackID == 0 {
		return nil, contractdomain.ErrInvalidTrack
	}
	if req.ShareRate.IsNegative() || req.ShareRate.GreaterThan(hundred) {
		return nil, contractdomain.ErrInvalidShareRate
	}
	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}
	if req.StartDate.IsZero() {
		return nil, contractdomain.ErrInvalidWindow
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, contractdomain.ErrInvalidWindow
	}

	now := s.clock.Now().UTC()
	c := &contractdomain.PartnerTrackContract{
		ID:        s.genID.Generate(),
		PartnerID: partnerID,
		TrackID:   trackID,
		ShareRate: req.ShareRate,
		Role:      role,
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActivePair(ctx, tx, partnerID, trackID)
		if err != nil {
			return err
		}
		if existing != nil {
			return contractdomain.ErrActiveContractTaken
		}
		return s.repo.Insert(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contract created",
		zap.String("id", c.ID.String()),
		zap.String("partner_id", partnerID.String()),
		zap.String("track_id", trackID.String()),
		zap.String("share_rate", c.ShareRate.String()),
	)
	return c, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*contractdomain.PartnerTrackContract, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, contractdomain.ErrNotFound
	}

	var updated *contractdomain.PartnerTrackContract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if c == nil {
			return contractdomain.ErrNotFound
		}
		c.Active = false
		c.UpdatedAt = s.clock.Now().UTC()
		updated = c
		return s.repo.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*contractdomain.PartnerTrackContract, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, contractdomain.ErrNotFound
	}
	c, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, contractdomain.ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, req contractdomain.ListRequest) ([]contractdomain.PartnerTrackContract, error) {
	var partnerID, trackID *snowflake.ID
	if trimmed := strings.TrimSpace(req.PartnerID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, contractdomain.ErrInvalidPartner
		}
		partnerID = &parsed
	}
	if trimmed := strings.TrimSpace(req.TrackID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, contractdomain.ErrInvalidTrack
		}
		trackID = &parsed
	}
	return s.repo.List(ctx, s.db, partnerID, trackID)
}

func (s *Service) ActiveForTrack(ctx context.Context, trackID snowflake.ID, asOf time.Time) ([]contractdomain.PartnerTrackContract, error) {
	return s.repo.ActiveForTrack(ctx, s.db, trackID, asOf)
}

func normalizeRole(raw string) (contractdomain.ContractRole, error) {
	switch contractdomain.ContractRole(strings.ToLower(strings.TrimSpace(raw))) {
	case contractdomain.RoleComposer:
		return contractdomain.RoleComposer, nil
	case contractdomain.RoleLyricist:
		return contractdomain.RoleLyricist, nil
	case contractdomain.RoleArtist:
		return contractdomain.RoleArtist, nil
	case contractdomain.RoleLabel:
		return contractdomain.RoleLabel, nil
	default:
		return "", contractdomain.ErrInvalidRole
	}
}
