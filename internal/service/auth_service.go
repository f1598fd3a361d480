package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

const minPasswordLength = 6

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	City     string
}

type LoginParams struct {
	Email    string
	Password string
}

// UpdateProfileParams nil 代表未提供該欄位
type UpdateProfileParams struct {
	Name    *string
	City    *string
	Bio     *string
	Hobbies *[]string
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*model.AuthResponse, error)
	Login(ctx context.Context, params LoginParams) (*model.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*model.User, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	directory UserDirectory
	tokens    *auth.TokenIssuer
}

func NewAuthService(users repository.UserRepository, directory UserDirectory, tokens *auth.TokenIssuer) AuthService {
	return &AuthServiceImpl{
		users:     users,
		directory: directory,
		tokens:    tokens,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, params RegisterParams) (*model.AuthResponse, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", apperrors.ErrInvalidInput)
	case len(params.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrInvalidInput, minPasswordLength)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		City:         strings.TrimSpace(params.City),
		Hobbies:      []string{},
	})
	if err != nil {
		return nil, err
	}

	return s.respond(user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, params LoginParams) (*model.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, params.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*model.User, error) {
	update := model.UpdateUserParams{}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrInvalidInput)
		}
		update.Name = &name
	}
	if params.City != nil {
		city := strings.TrimSpace(*params.City)
		update.City = &city
	}
	if params.Bio != nil {
		bio := strings.TrimSpace(*params.Bio)
		update.Bio = &bio
	}
	if params.Hobbies != nil {
		hobbies := model.NormalizeTags(*params.Hobbies)
		update.Hobbies = &hobbies
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: no updatable fields provided", apperrors.ErrInvalidInput)
	}

	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	// 名字或城市可能改變，清掉快取中的摘要
	s.directory.Invalidate(ctx, userID)
	return user, nil
}

func (s *AuthServiceImpl) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
