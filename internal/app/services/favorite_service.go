package services

import (
	"context"

	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
)

// FavoriteService toggles and reports favorites on courses and houses
type FavoriteService interface {
	IsFavorited(ctx context.Context, kind models.TargetKind, userID, targetID int64) (*dto.FavoriteResponse, error)
	Toggle(ctx context.Context, kind models.TargetKind, userID, targetID int64) (*dto.FavoriteResponse, error)
}

type favoriteServiceImpl struct {
	favoriteRepo repositories.IFavoriteRepository
	courseRepo   repositories.ICourseRepository
	houseRepo    repositories.IHouseRepository
}

// NewFavoriteService creates a new favorite service instance
func NewFavoriteService(
	favoriteRepo repositories.IFavoriteRepository,
	courseRepo repositories.ICourseRepository,
	houseRepo repositories.IHouseRepository,
) FavoriteService {
	return &favoriteServiceImpl{
		favoriteRepo: favoriteRepo,
		courseRepo:   courseRepo,
		houseRepo:    houseRepo,
	}
}

// IsFavorited is always false for anonymous callers
func (s *favoriteServiceImpl) IsFavorited(ctx context.Context, kind models.TargetKind, userID, targetID int64) (*dto.FavoriteResponse, error) {
	if userID <= 0 {
		return &dto.FavoriteResponse{IsFavorited: false}, nil
	}

	exists, err := s.favoriteRepo.Exists(ctx, kind, userID, targetID)
	if err != nil {
		return nil, err
	}
	return &dto.FavoriteResponse{IsFavorited: exists}, nil
}

// Toggle flips the favorite and returns the new state
func (s *favoriteServiceImpl) Toggle(ctx context.Context, kind models.TargetKind, userID, targetID int64) (*dto.FavoriteResponse, error) {
	var err error
	switch kind {
	case models.TargetCourse:
		_, err = s.courseRepo.GetInstructorID(ctx, targetID)
	case models.TargetHouse:
		_, err = s.houseRepo.GetByID(ctx, targetID)
	}
	if err != nil {
		return nil, err
	}

	favorited, err := s.favoriteRepo.Toggle(ctx, kind, userID, targetID)
	if err != nil {
		return nil, err
	}
	return &dto.FavoriteResponse{IsFavorited: favorited}, nil
}
