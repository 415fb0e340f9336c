package service

import (
	"context"

	"titlehub/internal/api/access"
	"titlehub/internal/api/dto"
	"titlehub/internal/api/models"
	"titlehub/internal/api/repository"
	"titlehub/internal/apperror"
	"titlehub/internal/validator"
)

type UserService interface {
	List(ctx context.Context, actor access.Actor, search string, page, pageSize int) (*dto.PaginatedResponse[dto.UserResponse], error)
	Get(ctx context.Context, actor access.Actor, username string) (*dto.UserResponse, error)
	Create(ctx context.Context, actor access.Actor, req dto.CreateUserDTO) (*dto.UserResponse, error)
	Update(ctx context.Context, actor access.Actor, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor access.Actor, username string) error
	Me(ctx context.Context, actor access.Actor) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor access.Actor, req dto.UpdateMeDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, actor access.Actor, search string, page, pageSize int) (*dto.PaginatedResponse[dto.UserResponse], error) {
	if err := access.Check(actor, access.ActionRead, access.Resource{Kind: access.KindUsers}); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginatedResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) Get(ctx context.Context, actor access.Actor, username string) (*dto.UserResponse, error) {
	if err := access.Check(actor, access.ActionRead, access.Resource{Kind: access.KindUsers}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor access.Actor, req dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindUsers}); err != nil {
		return nil, err
	}
	if err := validator.Username(req.Username); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			return nil, apperror.ValidationFailed("role", "role must be one of user, moderator, admin")
		}
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor access.Actor, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindUsers}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(user, req.Email, req.FirstName, req.LastName, req.Bio)
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, apperror.ValidationFailed("role", "role must be one of user, moderator, admin")
		}
		user.Role = role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor access.Actor, username string) error {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindUsers}); err != nil {
		return err
	}
	// reviews and comments authored by the user are removed with them
	return s.userRepo.Delete(ctx, username)
}

func (s *userService) Me(ctx context.Context, actor access.Actor) (*dto.UserResponse, error) {
	if err := access.Check(actor, access.ActionRead, access.Resource{Kind: access.KindSelf}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateMe applies a partial self-update. The DTO has no role field, so
// the stored role survives whatever the client sends.
func (s *userService) UpdateMe(ctx context.Context, actor access.Actor, req dto.UpdateMeDTO) (*dto.UserResponse, error) {
	if err := access.Check(actor, access.ActionMutate, access.Resource{Kind: access.KindSelf}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(user, req.Email, req.FirstName, req.LastName, req.Bio)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func applyProfileUpdate(user *models.User, email, firstName, lastName, bio *string) {
	if email != nil {
		user.Email = *email
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if bio != nil {
		user.Bio = *bio
	}
}
