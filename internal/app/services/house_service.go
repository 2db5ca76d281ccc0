package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/edustay/internal/app/auth"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

const defaultHouseType = "apartment"

// HouseService defines the interface for housing listing operations
type HouseService interface {
	ListHouses(ctx context.Context, viewerID int64) (*dto.HouseListResponse, error)
	GetHouse(ctx context.Context, houseID, viewerID int64) (*models.House, error)
	CreateHouse(ctx context.Context, homeownerID int64, req *dto.HouseRequest) (*models.House, error)
	UpdateHouse(ctx context.Context, houseID, userID int64, req *dto.HouseRequest) (*models.House, error)
	DeleteHouse(ctx context.Context, houseID, userID int64) error
}

// houseServiceImpl implements the HouseService interface
type houseServiceImpl struct {
	houseRepo  repositories.IHouseRepository
	rentalRepo repositories.IRentalRepository
	authz      *appauth.AuthorizationService
	logger     zerolog.Logger
}

// NewHouseService creates a new house service instance
func NewHouseService(
	houseRepo repositories.IHouseRepository,
	rentalRepo repositories.IRentalRepository,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) HouseService {
	return &houseServiceImpl{
		houseRepo:  houseRepo,
		rentalRepo: rentalRepo,
		authz:      authz,
		logger:     logger,
	}
}

// ListHouses returns available houses and every house owned by the viewer, newest first
func (s *houseServiceImpl) ListHouses(ctx context.Context, viewerID int64) (*dto.HouseListResponse, error) {
	houses, err := s.houseRepo.List(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	if houses == nil {
		houses = []models.House{}
	}
	return &dto.HouseListResponse{Houses: houses}, nil
}

// GetHouse returns a house. Only the owner sees its rentals and the homeowner email.
func (s *houseServiceImpl) GetHouse(ctx context.Context, houseID, viewerID int64) (*models.House, error) {
	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		return nil, err
	}

	if !house.IsOwnedBy(viewerID) {
		house.Rentals = nil
		house.CurrentRental = nil
		if house.Homeowner != nil {
			house.Homeowner.Email = ""
		}
		return house, nil
	}

	rentals, err := s.rentalRepo.ListByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	house.Rentals = rentals
	if house.Rentals == nil {
		house.Rentals = []models.Rental{}
	}

	if house.CurrentRentalID != nil {
		for i := range rentals {
			if rentals[i].ID == *house.CurrentRentalID {
				current := rentals[i]
				house.CurrentRental = &current
				break
			}
		}
	}

	return house, nil
}

// CreateHouse lists a new available house owned by homeownerID
func (s *houseServiceImpl) CreateHouse(ctx context.Context, homeownerID int64, req *dto.HouseRequest) (*models.House, error) {
	house := &models.House{HomeownerID: homeownerID}
	if err := applyHouseRequest(house, req); err != nil {
		return nil, err
	}

	if err := s.houseRepo.Create(ctx, house); err != nil {
		return nil, fmt.Errorf("failed to create house: %w", err)
	}

	s.logger.Info().Int64("houseID", house.ID).Int64("homeownerID", homeownerID).Msg("House listed")
	return house, nil
}

// UpdateHouse edits the listing fields of a house owned by userID
func (s *houseServiceImpl) UpdateHouse(ctx context.Context, houseID, userID int64, req *dto.HouseRequest) (*models.House, error) {
	house, err := s.authz.ValidateHouseOwnership(ctx, houseID, userID)
	if err != nil {
		return nil, err
	}

	if err := applyHouseRequest(house, req); err != nil {
		return nil, err
	}

	if err := s.houseRepo.Update(ctx, house); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("houseID", houseID).Msg("House updated")
	return house, nil
}

// DeleteHouse removes a house owned by userID. Rented houses cannot be deleted.
func (s *houseServiceImpl) DeleteHouse(ctx context.Context, houseID, userID int64) error {
	house, err := s.authz.ValidateHouseOwnership(ctx, houseID, userID)
	if err != nil {
		return err
	}
	if house.Status == models.HouseRented || house.CurrentRentalID != nil {
		details := map[string]interface{}{"houseId": houseID}
		if house.CurrentRentalID != nil {
			details["currentRentalId"] = *house.CurrentRentalID
		}
		return apperrors.NewCustomError(apperrors.ErrHouseRented, "Cannot delete a house while it is rented").
			WithDetails(details)
	}

	if err := s.houseRepo.Delete(ctx, houseID); err != nil {
		return err
	}

	s.logger.Info().Int64("houseID", houseID).Msg("House deleted")
	return nil
}

// applyHouseRequest copies client-writable fields onto house
func applyHouseRequest(house *models.House, req *dto.HouseRequest) error {
	if req.Price == nil || req.Bedrooms == nil || req.Bathrooms == nil || req.Size == nil {
		return fmt.Errorf("%w: price, bedrooms, bathrooms and size are required", apperrors.ErrValidationFailed)
	}
	if *req.Price < 0 || *req.Bedrooms < 0 || *req.Bathrooms < 0 || *req.Size < 0 {
		return fmt.Errorf("%w: numeric fields cannot be negative", apperrors.ErrValidationFailed)
	}

	houseType := strings.TrimSpace(req.Type)
	if houseType == "" {
		houseType = defaultHouseType
	}

	house.Title = strings.TrimSpace(req.Title)
	house.Description = req.Description
	house.Address = req.Address
	house.Price = float64(*req.Price)
	house.Bedrooms = int(*req.Bedrooms)
	house.Bathrooms = int(*req.Bathrooms)
	house.Size = float64(*req.Size)
	house.Amenities = nonNil(req.Amenities)
	house.Images = nonNil(req.Images)
	house.Type = houseType
	house.Latitude = req.Latitude.Ptr()
	house.Longitude = req.Longitude.Ptr()
	return nil
}
