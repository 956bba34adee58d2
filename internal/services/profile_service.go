package services

import (
	"context"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/repositories"
	"auction_backend/internal/services/dto"
	"auction_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ProfileService manages a county user's default visibility preferences,
// which seed the settings of properties they create.
type ProfileService interface {
	GetVisibilityPreferences(ctx context.Context, db *gorm.DB, principal *auth.Principal) (*dto.VisibilityPreferencesResponse, error)
	UpdateVisibilityPreferences(ctx context.Context, db *gorm.DB, principal *auth.Principal, patch map[string]interface{}) (*dto.VisibilityPreferencesResponse, error)
}

type profileService struct {
	userRepo repositories.UserRepository
}

func NewProfileService(userRepo repositories.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) GetVisibilityPreferences(ctx context.Context, db *gorm.DB, principal *auth.Principal) (*dto.VisibilityPreferencesResponse, error) {
	if err := requireProfileAccess(principal); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(db, principal.UserID)
	if err != nil {
		return nil, handleUserError(err)
	}

	return &dto.VisibilityPreferencesResponse{VisibilityPreferences: user.VisibilityPreferences}, nil
}

// UpdateVisibilityPreferences merges the supplied keys into the saved
// preferences and returns the full result.
func (s *profileService) UpdateVisibilityPreferences(ctx context.Context, db *gorm.DB, principal *auth.Principal, patch map[string]interface{}) (*dto.VisibilityPreferencesResponse, error) {
	if err := requireProfileAccess(principal); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(db, principal.UserID)
	if err != nil {
		return nil, handleUserError(err)
	}

	updated := user.VisibilityPreferences.Merge(patch)
	if err := s.userRepo.UpdateVisibilityPreferences(db, user.ID, updated); err != nil {
		logger.CtxWithError(ctx, "failed to save visibility preferences", err)
		return nil, handleUserError(err)
	}

	return &dto.VisibilityPreferencesResponse{VisibilityPreferences: updated}, nil
}

func requireProfileAccess(principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorizedError("User not authenticated")
	}
	if !principal.Can(auth.PermProfileWrite) {
		return apperrors.ErrCountyRoleRequired()
	}
	return nil
}
