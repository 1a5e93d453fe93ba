package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/tunebridge/tunebridge/internal/clock"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
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
	Repo  trackdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  trackdomain.Repository
}

func New(p Params) trackdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("track.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req trackdomain.CreateRequest) (*trackdomain.Track, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, trackdomain.ErrInvalidTitle
	}
	artist := strings.TrimSpace(req.Artist)
	if artist == "" {
		return nil, trackdomain.ErrInvalidArtist
	}

	now := s.clock.Now().UTC()
	t := &trackdomain.Track{
		ID:         s.genID.Generate(),
		Title:      title,
		Artist:     artist,
		Album:      req.Album,
		ReleasedOn: req.ReleasedOn,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := s.resolveSlug(ctx, tx, slug.Make(fmt.Sprintf("%s %s", artist, title)))
		if err != nil {
			return err
		}
		t.Slug = candidate
		return s.repo.Insert(ctx, tx, t)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, trackdomain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("track created", zap.String("id", t.ID.String()), zap.String("slug", t.Slug))
	return t, nil
}

// resolveSlug suffixes the base slug until it is free. Bounded; collisions
// past the bound surface as a duplicate-key error on insert.
func (s *Service) resolveSlug(ctx context.Context, tx *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 2; i <= 10; i++ {
		existing, err := s.repo.FindBySlug(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return candidate, nil
}

func (s *Service) Update(ctx context.Context, req trackdomain.UpdateRequest) (*trackdomain.Track, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, trackdomain.ErrNotFound
	}

	var updated *trackdomain.Track
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return trackdomain.ErrNotFound
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return trackdomain.ErrInvalidTitle
			}
			t.Title = title
		}
		if req.Artist != nil {
			artist := strings.TrimSpace(*req.Artist)
			if artist == "" {
				return trackdomain.ErrInvalidArtist
			}
			t.Artist = artist
		}
		if req.Album != nil {
			t.Album = req.Album
		}
		if req.Active != nil {
			t.Active = *req.Active
		}
		t.UpdatedAt = s.clock.Now().UTC()

		updated = t
		return s.repo.Update(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*trackdomain.Track, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, trackdomain.ErrNotFound
	}
	t, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, trackdomain.ErrNotFound
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]trackdomain.Track, error) {
	return s.repo.List(ctx, s.db)
}
