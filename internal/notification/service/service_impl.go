package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tunebridge/tunebridge/internal/clock"
	notificationdomain "github.com/tunebridge/tunebridge/internal/notification/domain"
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
	Repo  notificationdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  notificationdomain.Repository
}

func New(p Params) notificationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Emit(ctx context.Context, req notificationdomain.EmitRequest) (*notificationdomain.SettlementNotification, error) {
	if req.PartnerID == 0 {
		return nil, notificationdomain.ErrInvalidPartner
	}
	switch req.Type {
	case notificationdomain.TypeSettlementReady,
		notificationdomain.TypeSettlementConfirmed,
		notificationdomain.TypePaymentComplete,
		notificationdomain.TypeGeneral:
	default:
		return nil, notificationdomain.ErrInvalidType
	}

	n := &notificationdomain.SettlementNotification{
		ID:                  s.genID.Generate(),
		PartnerID:           req.PartnerID,
		PartnerSettlementID: req.PartnerSettlementID,
		Type:                req.Type,
		Title:               strings.TrimSpace(req.Title),
		Message:             strings.TrimSpace(req.Message),
		CreatedAt:           s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) ListForPartner(ctx context.Context, partnerID string, unreadOnly bool) ([]notificationdomain.SettlementNotification, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(partnerID))
	if err != nil || parsed == 0 {
		return nil, notificationdomain.ErrInvalidPartner
	}
	return s.repo.ListForPartner(ctx, s.db, parsed, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id string) (*notificationdomain.SettlementNotification, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, notificationdomain.ErrNotFound
	}

	var out *notificationdomain.SettlementNotification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if n == nil {
			return notificationdomain.ErrNotFound
		}
		if !n.Read {
			if _, err := s.repo.MarkRead(ctx, tx, parsed, s.clock.Now().UTC()); err != nil {
				return err
			}
			n, err = s.repo.FindByID(ctx, tx, parsed)
			if err != nil {
				return err
			}
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
