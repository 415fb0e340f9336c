package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/service"
	"titlehub/internal/apperror"
	"titlehub/internal/config"
)

// --- MOCKS ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockCodeStore struct {
	mock.Mock
}

func (m *MockCodeStore) Issue(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockCodeStore) Verify(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// --- SETUP ---

func newAuthService(userRepo *MockUserRepository, store *MockCodeStore, mailer *MockMailer) service.AuthService {
	cfg := &config.Config{
		JWTSecret: "test-secret-key-that-is-long-enough!",
		TokenTTL:  time.Hour,
	}
	return service.NewAuthService(userRepo, store, mailer, cfg)
}

// --- TESTS ---

func TestAuthService_SignUp(t *testing.T) {
	t.Run("NewUser", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		userRepo.On("FindByUsername", mock.Anything, "alice").
			Return(nil, apperror.NotFound("user", "alice")).Once()
		userRepo.On("FindByEmail", mock.Anything, "alice@example.com").
			Return(nil, apperror.NotFound("user", "alice@example.com")).Once()
		userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" && u.Role == models.RoleUser
		})).Return(nil).Once()
		store.On("Issue", mock.Anything, mock.Anything).Return("123456", nil).Once()
		mailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return body == "Your confirmation code is 123456"
		})).Return(nil).Once()

		resp, err := svc.SignUp(context.Background(), dto.SignUpRequest{
			Username: "alice",
			Email:    "alice@example.com",
		})

		assert.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "alice@example.com", resp.Email)
		userRepo.AssertExpectations(t)
		store.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("ExistingPairReissuesCode", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		existing := &models.User{ID: "uid-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil).Once()
		store.On("Issue", mock.Anything, "uid-1").Return("654321", nil).Once()
		mailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.SignUp(context.Background(), dto.SignUpRequest{
			Username: "alice",
			Email:    "alice@example.com",
		})

		assert.NoError(t, err)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("UsernameTakenByOtherEmail", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		existing := &models.User{ID: "uid-1", Username: "alice", Email: "alice@example.com"}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil).Once()

		_, err := svc.SignUp(context.Background(), dto.SignUpRequest{
			Username: "alice",
			Email:    "other@example.com",
		})

		assert.ErrorIs(t, err, apperror.ErrConflict)
		store.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("EmailTakenByOtherUsername", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		userRepo.On("FindByUsername", mock.Anything, "bob").
			Return(nil, apperror.NotFound("user", "bob")).Once()
		existing := &models.User{ID: "uid-1", Username: "alice", Email: "alice@example.com"}
		userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(existing, nil).Once()

		_, err := svc.SignUp(context.Background(), dto.SignUpRequest{
			Username: "bob",
			Email:    "alice@example.com",
		})

		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("ReservedUsername", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		_, err := svc.SignUp(context.Background(), dto.SignUpRequest{
			Username: "me",
			Email:    "me@example.com",
		})

		assert.ErrorIs(t, err, apperror.ErrValidation)
		userRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
	})

	t.Run("ResendThrottled", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		existing := &models.User{ID: "uid-1", Username: "alice", Email: "alice@example.com"}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil).Twice()
		store.On("Issue", mock.Anything, "uid-1").Return("111111", nil).Once()
		mailer.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil).Once()

		req := dto.SignUpRequest{Username: "alice", Email: "alice@example.com"}
		_, err := svc.SignUp(context.Background(), req)
		assert.NoError(t, err)

		_, err = svc.SignUp(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestAuthService_Token(t *testing.T) {
	user := &models.User{ID: "uid-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}

	t.Run("Success", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		store.On("Verify", mock.Anything, "uid-1", "123456").Return(nil).Once()

		resp, err := svc.Token(context.Background(), dto.TokenRequest{
			Username:         "alice",
			ConfirmationCode: "123456",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Token)

		actor, err := svc.ValidateActor(resp.Token)
		assert.NoError(t, err)
		assert.Equal(t, "uid-1", actor.UserID)
		assert.Equal(t, models.RoleUser, actor.Role)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		userRepo.On("FindByUsername", mock.Anything, "ghost").
			Return(nil, apperror.NotFound("user", "ghost")).Once()

		_, err := svc.Token(context.Background(), dto.TokenRequest{
			Username:         "ghost",
			ConfirmationCode: "123456",
		})

		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("WrongCode", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		store := new(MockCodeStore)
		mailer := new(MockMailer)
		svc := newAuthService(userRepo, store, mailer)

		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		store.On("Verify", mock.Anything, "uid-1", "000000").
			Return(apperror.Unauthorized("code mismatch")).Once()

		_, err := svc.Token(context.Background(), dto.TokenRequest{
			Username:         "alice",
			ConfirmationCode: "000000",
		})

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, "confirmation_code", appErr.Field)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	store := new(MockCodeStore)
	mailer := new(MockMailer)
	svc := newAuthService(userRepo, store, mailer)

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := service.NewAuthService(userRepo, store, mailer, &config.Config{
			JWTSecret: "another-secret-key-that-is-long-too!",
			TokenTTL:  time.Hour,
		})

		user := &models.User{ID: "uid-1", Username: "alice", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		store.On("Verify", mock.Anything, "uid-1", "123456").Return(nil).Once()

		resp, err := other.Token(context.Background(), dto.TokenRequest{
			Username:         "alice",
			ConfirmationCode: "123456",
		})
		assert.NoError(t, err)

		_, err = svc.ValidateToken(resp.Token)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
