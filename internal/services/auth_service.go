package services

import (
	"context"
	"errors"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/services/dto"
	"auction_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	ttlSecs  int
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager, ttlSecs int) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		ttlSecs:  ttlSecs,
	}
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, apperrors.DatabaseError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.ttlSecs,
		User: dto.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, nil
}
