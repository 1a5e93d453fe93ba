package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	distributordomain "github.com/tunebridge/tunebridge/internal/distributor/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() distributordomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, d *distributordomain.Distributor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO distributors (id, code, name, commission_rate, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID,
		d.Code,
		d.Name,
		d.CommissionRate,
		d.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*distributordomain.Distributor, error) {
	var d distributordomain.Distributor
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, commission_rate, created_at
		 FROM distributors WHERE id = ?`,
		id,
	).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*distributordomain.Distributor, error) {
	var d distributordomain.Distributor
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, commission_rate, created_at
		 FROM distributors WHERE code = ?`,
		code,
	).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]distributordomain.Distributor, error) {
	var out []distributordomain.Distributor
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, commission_rate, created_at
		 FROM distributors ORDER BY created_at ASC`,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
