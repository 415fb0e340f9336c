package service

import (
	"context"
	"strings"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/validator"
)

type CategoryService interface {
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse[dto.SluggedResponse], error)
	Create(ctx context.Context, actor access.Actor, req dto.SluggedRequest) (*dto.SluggedResponse, error)
	Delete(ctx context.Context, actor access.Actor, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse[dto.SluggedResponse], error) {
	categories, total, err := s.repo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SluggedResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, dto.FromSlugged(c))
	}
	return dto.NewPaginatedResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, actor access.Actor, req dto.SluggedRequest) (*dto.SluggedResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return nil, err
	}
	if err := validator.Slug(req.Slug); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name: strings.TrimSpace(req.Name),
		Slug: req.Slug,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	resp := dto.FromSlugged(*category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, actor access.Actor, slug string) error {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return err
	}
	return s.repo.DeleteBySlug(ctx, slug)
}
