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

type GenreService interface {
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse[dto.SluggedResponse], error)
	Create(ctx context.Context, actor access.Actor, req dto.SluggedRequest) (*dto.SluggedResponse, error)
	Delete(ctx context.Context, actor access.Actor, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse[dto.SluggedResponse], error) {
	genres, total, err := s.repo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SluggedResponse, 0, len(genres))
	for _, g := range genres {
		responses = append(responses, dto.FromSlugged(g))
	}
	return dto.NewPaginatedResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, actor access.Actor, req dto.SluggedRequest) (*dto.SluggedResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return nil, err
	}
	if err := validator.Slug(req.Slug); err != nil {
		return nil, err
	}

	genre := &models.Genre{
		Name: strings.TrimSpace(req.Name),
		Slug: req.Slug,
	}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, err
	}
	resp := dto.FromSlugged(*genre)
	return &resp, nil
}

// Delete removes the genre; title associations go with it, the titles stay.
func (s *genreService) Delete(ctx context.Context, actor access.Actor, slug string) error {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindTaxonomy}); err != nil {
		return err
	}
	return s.repo.DeleteBySlug(ctx, slug)
}
