package repository

import (
	"context"

	"gorm.io/gorm"

	"titlehub/internal/api/models"
)

type GenreRepository interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Genre, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Genre{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).Order("slug").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, translate(err, "genre", slug)
	}
	return &g, nil
}

// FindBySlugs resolves a set of genre slugs at once; a missing slug fails
// the whole lookup so a title can never be linked to a half-resolved set.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, err
	}
	if len(list) != len(slugs) {
		found := make(map[string]bool, len(list))
		for _, g := range list {
			found[g.Slug] = true
		}
		for _, s := range slugs {
			if !found[s] {
				return nil, translate(gorm.ErrRecordNotFound, "genre", s)
			}
		}
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	return translate(r.db.WithContext(ctx).Create(g).Error, "genre", g.Slug)
}

// DeleteBySlug removes the genre and, through the FK cascade, every
// title_genres row pointing at it.
func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return translate(result.Error, "genre", slug)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "genre", slug)
	}
	return nil
}
