package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	trackdomain "github.com/tunebridge/tunebridge/internal/track/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() trackdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *trackdomain.Track) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tracks (id, slug, title, artist, album, released_on, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Slug,
		t.Title,
		t.Artist,
		t.Album,
		t.ReleasedOn,
		t.Active,
		t.CreatedAt,
		t.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *trackdomain.Track) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tracks
		 SET title = ?, artist = ?, album = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title,
		t.Artist,
		t.Album,
		t.Active,
		t.UpdatedAt,
		t.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*trackdomain.Track, error) {
	var t trackdomain.Track
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, artist, album, released_on, active, created_at, updated_at
		 FROM tracks WHERE id = ?`,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*trackdomain.Track, error) {
	var t trackdomain.Track
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, artist, album, released_on, active, created_at, updated_at
		 FROM tracks WHERE slug = ?`,
		slug,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]trackdomain.Track, error) {
	var out []trackdomain.Track
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, artist, album, released_on, active, created_at, updated_at
		 FROM tracks ORDER BY created_at ASC`,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
