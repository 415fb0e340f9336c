package service

import (
	"context"
	"errors"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/apperror"
	"titlehub/internal/validator"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedResponse[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor access.Actor, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedResponse[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	averages, err := s.titleRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], ratingFrom(averages, titles[i].ID)))
	}
	return dto.NewPaginatedResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	averages, err := s.titleRepo.AverageScores(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(title, ratingFrom(averages, id)), nil
}

func (s *titleService) Create(ctx context.Context, actor access.Actor, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return nil, err
	}
	if err := validator.Year(req.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return s.Get(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, actor access.Actor, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return nil, err
	}

	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := validator.Year(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if req.Genre != nil {
		genres, err := s.resolveGenres(ctx, req.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return err
	}
	// reviews and their comments go with the title (FK cascade)
	return s.titleRepo.Delete(ctx, id)
}

// resolveCategory maps an unknown slug to a validation failure: the slug
// arrives in the request body, so this is malformed input, not a missing
// URL resource.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ValidationFailed("category", "unknown category slug: "+slug)
	}
	return category, err
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ValidationFailed("genre", "unknown genre slug")
	}
	return genres, err
}

func ratingFrom(averages map[int64]float64, titleID int64) *int {
	avg, ok := averages[titleID]
	if !ok {
		return nil
	}
	rating := RoundScore(avg)
	return &rating
}
