package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/tunebridge/tunebridge/internal/partner/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() partnerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *partnerdomain.Partner) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO partners (id, slug, name, email, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Slug,
		p.Name,
		p.Email,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *partnerdomain.Partner) error {
	return db.WithContext(ctx).Exec(
		`UPDATE partners
		 SET name = ?, email = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Email,
		p.Active,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*partnerdomain.Partner, error) {
	var p partnerdomain.Partner
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, email, active, created_at, updated_at
		 FROM partners WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*partnerdomain.Partner, error) {
	var p partnerdomain.Partner
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, email, active, created_at, updated_at
		 FROM partners WHERE slug = ?`,
		slug,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]partnerdomain.Partner, error) {
	var out []partnerdomain.Partner
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, email, active, created_at, updated_at
		 FROM partners ORDER BY created_at ASC`,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
