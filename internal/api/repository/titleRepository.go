package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"titlehub/internal/api/models"
)

// TitleFilter mirrors the list query parameters: exact category slug,
// substring genre slug, substring name, exact year.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})

	if filter.CategorySlug != "" {
		q = q.Where(
			"category_id IN (SELECT id FROM categories WHERE LOWER(slug) = ?)",
			strings.ToLower(filter.CategorySlug),
		)
	}
	if filter.GenreSlug != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.title_id = titles.id AND g.slug ILIKE ?)",
			"%"+filter.GenreSlug+"%",
		)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		q = q.Where("year = ?", *filter.Year)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := q.
		Preload("Category").
		Preload("Genres").
		Order("name").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&t, id).Error; err != nil {
		return nil, translate(err, "title", id)
	}
	return &t, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "title", t.Name)
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	// Omit the association: genre links are replaced explicitly through
	// ReplaceGenres, never implicitly by Save.
	return translate(r.db.WithContext(ctx).Omit("Genres").Save(t).Error, "title", t.ID)
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres); err != nil {
		return translate(err, "title", t.ID)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return translate(result.Error, "title", id)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "title", id)
	}
	return nil
}

// AverageScores computes the mean review score per title in one aggregate
// query. Titles without reviews are simply absent from the result map, so
// batch and single-item reads derive the same value from the same rows.
func (r *titleRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	if len(titleIDs) == 0 {
		return map[int64]float64{}, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	averages := make(map[int64]float64, len(rows))
	for _, row := range rows {
		averages[row.TitleID] = row.Average
	}
	return averages, nil
}
