package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(ctx context.Context, req *transfer.RegisterRequest) (int64, error)
	Login(ctx context.Context, req *transfer.LoginRequest) (int64, error)
	GetUserInfo(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *transfer.UpdateProfileRequest) (*models.User, error)
}

type authService struct {
	u repository.UserRepository
}

func NewAuthService(u repository.UserRepository) AuthService {
	return &authService{u: u}
}

func (s *authService) Register(ctx context.Context, req *transfer.RegisterRequest) (int64, error) {
	_, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if isExist {
		return 0, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	userID, err := s.u.Create(ctx, nil, &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		CompanyName:  req.CompanyName,
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}

func (s *authService) Login(ctx context.Context, req *transfer.LoginRequest) (int64, error) {
	user, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if !isExist {
		return 0, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return 0, ErrInvalidCredentials
	}

	return user.ID, nil
}

func (s *authService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *transfer.UpdateProfileRequest) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.CompanyName != "" {
		user.CompanyName = req.CompanyName
	}

	if err := s.u.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
