package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/tunebridge/tunebridge/internal/clock"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
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
	Repo  partnerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  partnerdomain.Repository
}

func New(p Params) partnerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("partner.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req partnerdomain.CreateRequest) (*partnerdomain.Partner, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, partnerdomain.ErrInvalidName
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, partnerdomain.ErrInvalidEmail
	}

	now := s.clock.Now().UTC()
	p := &partnerdomain.Partner{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := slug.Make(name)
		candidate := base
		for i := 2; i <= 10; i++ {
			existing, err := s.repo.FindBySlug(ctx, tx, candidate)
			if err != nil {
				return err
			}
			if existing == nil {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		p.Slug = candidate
		return s.repo.Insert(ctx, tx, p)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, partnerdomain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("partner created", zap.String("id", p.ID.String()), zap.String("slug", p.Slug))
	return p, nil
}

func (s *Service) Update(ctx context.Context, req partnerdomain.UpdateRequest) (*partnerdomain.Partner, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, partnerdomain.ErrNotFound
	}

	var updated *partnerdomain.Partner
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return partnerdomain.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return partnerdomain.ErrInvalidName
			}
			p.Name = name
		}
		if req.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*req.Email))
			if email == "" || !strings.Contains(email, "@") {
				return partnerdomain.ErrInvalidEmail
			}
			p.Email = email
		}
		if req.Active != nil {
			p.Active = *req.Active
		}
		p.UpdatedAt = s.clock.Now().UTC()

		updated = p
		return s.repo.Update(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*partnerdomain.Partner, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, partnerdomain.ErrNotFound
	}
	p, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, partnerdomain.ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]partnerdomain.Partner, error) {
	return s.repo.List(ctx, s.db)
}
