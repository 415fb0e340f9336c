package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/api/service"
	"titlehub/internal/apperror"
)

// --- MOCKS ---

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	args := m.Called(ctx, t, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTitleRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(ctx, titleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

// --- SETUP ---

func newReviewService(reviewRepo *MockReviewRepository, titleRepo *MockTitleRepository) service.ReviewService {
	return service.NewReviewService(reviewRepo, titleRepo, 1, 10)
}

var (
	userActor      = access.Actor{UserID: "user-1", Role: models.RoleUser}
	otherUserActor = access.Actor{UserID: "user-2", Role: models.RoleUser}
	moderatorActor = access.Actor{UserID: "mod-1", Role: models.RoleModerator}
	anonymousActor = access.Actor{}
)

// --- TESTS ---

func TestReviewService_Create(t *testing.T) {
	title := &models.Title{ID: 7, Name: "Some Title", Year: 2001}

	t.Run("Success", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
			return r.AuthorID == "user-1" && r.TitleID == 7 && r.Score == 8
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Review).ID = 42
		}).Return(nil).Once()
		stored := &models.Review{ID: 42, Text: "great", Score: 8, AuthorID: "user-1", TitleID: 7,
			Author: models.User{Username: "alice"}}
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(stored, nil).Once()

		resp, err := svc.Create(context.Background(), userActor, 7, dto.CreateReviewDTO{Text: "great", Score: 8})

		assert.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "alice", resp.Author)
		reviewRepo.AssertExpectations(t)
	})

	t.Run("UnknownTitle", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(404)).
			Return(nil, apperror.NotFound("title", 404)).Once()

		_, err := svc.Create(context.Background(), userActor, 404, dto.CreateReviewDTO{Text: "x", Score: 5})

		assert.ErrorIs(t, err, apperror.ErrNotFound)
		reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("AnonymousRejected", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()

		_, err := svc.Create(context.Background(), anonymousActor, 7, dto.CreateReviewDTO{Text: "x", Score: 5})

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Twice()

		_, err := svc.Create(context.Background(), userActor, 7, dto.CreateReviewDTO{Text: "x", Score: 0})
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = svc.Create(context.Background(), userActor, 7, dto.CreateReviewDTO{Text: "x", Score: 11})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("SecondReviewConflicts", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperror.Conflict("review already exists")).Once()

		_, err := svc.Create(context.Background(), userActor, 7, dto.CreateReviewDTO{Text: "again", Score: 9})

		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestReviewService_Update(t *testing.T) {
	title := &models.Title{ID: 7, Name: "Some Title", Year: 2001}
	existing := func() *models.Review {
		return &models.Review{ID: 42, Text: "old", Score: 5, AuthorID: "user-1", TitleID: 7,
			Author: models.User{Username: "alice"}}
	}
	newText := "revised"
	newScore := 9

	t.Run("AuthorCanEdit", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(existing(), nil).Once()
		reviewRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
			return r.Text == "revised" && r.Score == 9
		})).Return(nil).Once()

		resp, err := svc.Update(context.Background(), userActor, 7, 42,
			dto.UpdateReviewDTO{Text: &newText, Score: &newScore})

		assert.NoError(t, err)
		assert.Equal(t, "revised", resp.Text)
		assert.Equal(t, 9, resp.Score)
	})

	t.Run("OtherUserForbidden", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(existing(), nil).Once()

		_, err := svc.Update(context.Background(), otherUserActor, 7, 42,
			dto.UpdateReviewDTO{Text: &newText})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ModeratorCanEdit", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(existing(), nil).Once()
		reviewRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Update(context.Background(), moderatorActor, 7, 42,
			dto.UpdateReviewDTO{Text: &newText})

		assert.NoError(t, err)
	})
}

func TestReviewService_Delete(t *testing.T) {
	title := &models.Title{ID: 7, Name: "Some Title", Year: 2001}
	existing := &models.Review{ID: 42, AuthorID: "user-1", TitleID: 7}

	t.Run("ModeratorCanDelete", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(existing, nil).Once()
		reviewRepo.On("Delete", mock.Anything, int64(7), int64(42)).Return(nil).Once()

		err := svc.Delete(context.Background(), moderatorActor, 7, 42)

		assert.NoError(t, err)
		reviewRepo.AssertExpectations(t)
	})

	t.Run("OtherUserForbidden", func(t *testing.T) {
		reviewRepo := new(MockReviewRepository)
		titleRepo := new(MockTitleRepository)
		svc := newReviewService(reviewRepo, titleRepo)

		titleRepo.On("GetByID", mock.Anything, int64(7)).Return(title, nil).Once()
		reviewRepo.On("GetByID", mock.Anything, int64(7), int64(42)).Return(existing, nil).Once()

		err := svc.Delete(context.Background(), otherUserActor, 7, 42)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		reviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
