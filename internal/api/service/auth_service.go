package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/apperror"
	"titlehub/internal/codes"
	"titlehub/internal/config"
	"titlehub/internal/mail"
	"titlehub/internal/validator"
)

const confirmationMailSubject = "Your confirmation code"

// Claims asserts a user's identity on every authenticated request.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// SignUp resolves or creates the (username,email) identity, issues a
	// confirmation code and mails it. Repeating a signup for the same
	// pair re-issues the code instead of failing.
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SignUpResponse, error)
	// Token exchanges a confirmation code for a bearer token.
	Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	// ValidateToken checks a bearer token and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)
	// ValidateActor resolves a bearer token straight into the actor the
	// permission checks operate on.
	ValidateActor(tokenString string) (access.Actor, error)
}

type authService struct {
	userRepo  repository.UserRepository
	codeStore codes.Store
	mailer    mail.Sender
	jwtSecret string
	tokenTTL  time.Duration

	// per-email signup throttle; entries live for the process lifetime,
	// which is fine at this service's scale
	limiters   map[string]*rate.Limiter
	limiterMu  sync.Mutex
	resendRate rate.Limit
}

func NewAuthService(userRepo repository.UserRepository, codeStore codes.Store, mailer mail.Sender, cfg *config.Config) AuthService {
	return &authService{
		userRepo:   userRepo,
		codeStore:  codeStore,
		mailer:     mailer,
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   cfg.TokenTTL,
		limiters:   make(map[string]*rate.Limiter),
		resendRate: rate.Every(time.Minute),
	}
}

func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SignUpResponse, error) {
	if err := validator.Username(req.Username); err != nil {
		return nil, err
	}

	user, err := s.resolveSignupUser(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	if !s.allowResend(req.Email) {
		return nil, apperror.ValidationFailed("email", "a confirmation code was requested too recently")
	}

	// A fresh code silently replaces any outstanding one for this user.
	code, err := s.codeStore.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Your confirmation code is %s", code)
	if err := s.mailer.Send(ctx, user.Email, confirmationMailSubject, body); err != nil {
		return nil, err
	}

	return &dto.SignUpResponse{Username: user.Username, Email: user.Email}, nil
}

// resolveSignupUser implements get-or-create on the (username,email)
// pair: an exact match is idempotent, a partial collision is a conflict.
// The database uniqueness constraints backstop concurrent signups that
// pass these reads simultaneously.
func (s *authService) resolveSignupUser(ctx context.Context, username, email string) (*models.User, error) {
	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if byName != nil {
		if byName.Email == email {
			return byName, nil
		}
		return nil, apperror.Conflict("username is already taken")
	}

	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if byEmail != nil {
		return nil, apperror.Conflict("email is already registered")
	}

	user := &models.User{Username: username, Email: email, Role: models.RoleUser}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if err := s.codeStore.Verify(ctx, user.ID, req.ConfirmationCode); err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrUnauthorized,
				Message: "confirmation code is invalid or expired",
				Field:   "confirmation_code",
			}
		}
		return nil, err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

func (s *authService) ValidateActor(tokenString string) (access.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return access.Actor{}, err
	}
	return access.Actor{UserID: claims.UserID, Role: models.Role(claims.Role)}, nil
}

func (s *authService) allowResend(email string) bool {
	s.limiterMu.Lock()
	limiter, ok := s.limiters[email]
	if !ok {
		limiter = rate.NewLimiter(s.resendRate, 1)
		s.limiters[email] = limiter
	}
	s.limiterMu.Unlock()
	return limiter.Allow()
}
