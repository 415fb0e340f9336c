package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/handler"
	"titlehub/internal/api/middleware"
	"titlehub/internal/api/models"
	"titlehub/internal/apperror"
)

// --- MOCK SERVICE ---

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedResponse[dto.ReviewResponse], error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedResponse[dto.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor access.Actor, titleID, reviewID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID)
	return args.Error(0)
}

// --- SETUP ---

func actorMiddleware(actor access.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	}
}

func setupReviewRouter(mockService *MockReviewService, actor *access.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1")
	if actor != nil {
		rg.Use(actorMiddleware(*actor))
	}
	handler.NewReviewHandler(mockService).RegisterRoutes(rg)
	return r
}

// --- TESTS ---

func TestReviewHandler_List(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, nil)

	reviews := []dto.ReviewResponse{
		{ID: 1, Text: "good", Author: "alice", Score: 8, PubDate: time.Now()},
	}
	mockService.On("List", mock.Anything, int64(7), 1, 20).
		Return(dto.NewPaginatedResponse(reviews, 1, 1, 20), nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/7/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	assert.Equal(t, "alice", item["author"])
	assert.Equal(t, float64(8), item["score"])
	mockService.AssertExpectations(t)
}

func TestReviewHandler_Get(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, nil)

		mockService.On("Get", mock.Anything, int64(7), int64(99)).
			Return(nil, apperror.NotFound("review", 99)).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/7/reviews/99", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/abc/reviews/1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviewHandler_Create(t *testing.T) {
	actor := access.Actor{UserID: "user-1", Role: models.RoleUser}

	t.Run("ActorPassedThrough", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, &actor)

		created := &dto.ReviewResponse{ID: 42, Text: "great", Author: "alice", Score: 8}
		mockService.On("Create", mock.Anything, actor, int64(7), dto.CreateReviewDTO{
			Text: "great", Score: 8,
		}).Return(created, nil).Once()

		w := postJSON(r, "/api/v1/titles/7/reviews", gin.H{"text": "great", "score": 8})

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AnonymousGets401", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, nil)

		mockService.On("Create", mock.Anything, access.Actor{}, int64(7), mock.Anything).
			Return(nil, apperror.Unauthorized("authentication required")).Once()

		w := postJSON(r, "/api/v1/titles/7/reviews", gin.H{"text": "great", "score": 8})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingText", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, &actor)

		w := postJSON(r, "/api/v1/titles/7/reviews", gin.H{"score": 8})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateGets409", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, &actor)

		mockService.On("Create", mock.Anything, actor, int64(7), mock.Anything).
			Return(nil, apperror.Conflict("review already exists")).Once()

		w := postJSON(r, "/api/v1/titles/7/reviews", gin.H{"text": "again", "score": 9})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestReviewHandler_Delete(t *testing.T) {
	actor := access.Actor{UserID: "user-2", Role: models.RoleUser}

	t.Run("ForbiddenForOtherUser", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, &actor)

		mockService.On("Delete", mock.Anything, actor, int64(7), int64(42)).
			Return(apperror.Forbidden("insufficient permissions")).Once()

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/7/reviews/42", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
