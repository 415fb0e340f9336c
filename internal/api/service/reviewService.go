package service

import (
	"context"
	"fmt"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/apperror"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedResponse[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor access.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	minScore   int
	maxScore   int
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, minScore, maxScore int) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		minScore:   minScore,
		maxScore:   maxScore,
	}
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedResponse[dto.ReviewResponse], error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginatedResponse(responses, int(total), page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create resolves the parent title before the permission check, then
// stamps the author from the actor. The (author,title) uniqueness comes
// back from the database as a Conflict.
func (s *reviewService) Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindContribution, OwnerID: actor.UserID}); err != nil {
		return nil, err
	}
	if err := s.checkScore(req.Score); err != nil {
		return nil, err
	}

	review := &models.Review{
		Text:     req.Text,
		Score:    req.Score,
		AuthorID: actor.UserID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindContribution, OwnerID: review.AuthorID}); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := s.checkScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, actor access.Actor, titleID, reviewID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return err
	}

	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindContribution, OwnerID: review.AuthorID}); err != nil {
		return err
	}

	// comments go with the review (FK cascade)
	return s.reviewRepo.Delete(ctx, titleID, reviewID)
}

func (s *reviewService) checkScore(score int) error {
	if score < s.minScore || score > s.maxScore {
		return apperror.ValidationFailed("score",
			fmt.Sprintf("score must be between %d and %d", s.minScore, s.maxScore))
	}
	return nil
}
