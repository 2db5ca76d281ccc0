package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/helpers"
	"github.com/yigit/edustay/internal/pkg/metrics"
)

// Reasons recorded when a rental is completed
const (
	RentalEndManual  = "manual"
	RentalEndExpired = "expired"
)

// RentalService drives the house rental state machine
type RentalService interface {
	StartRental(ctx context.Context, userID, houseID int64, req *dto.RentRequest) (*models.Rental, error)
	EndRental(ctx context.Context, userID, houseID int64) error
	CompleteExpiredRentals(ctx context.Context) (int, error)
}

// rentalServiceImpl implements the RentalService interface
type rentalServiceImpl struct {
	houseRepo  repositories.IHouseRepository
	rentalRepo repositories.IRentalRepository
	notifier   Notifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRentalService creates a new rental service instance. notifier may be nil.
func NewRentalService(
	houseRepo repositories.IHouseRepository,
	rentalRepo repositories.IRentalRepository,
	notifier Notifier,
	logger zerolog.Logger,
) RentalService {
	return &rentalServiceImpl{
		houseRepo:  houseRepo,
		rentalRepo: rentalRepo,
		notifier:   notifierOrNoop(notifier),
		logger:     logger,
		now:        time.Now,
	}
}

// ParseRentalPeriod validates the requested dates. The end date is optional
// but may not precede the start date.
func ParseRentalPeriod(req *dto.RentRequest) (*dto.RentalPeriod, error) {
	if req.StartDate == "" {
		return nil, fmt.Errorf("%w: startDate is required", apperrors.ErrValidationFailed)
	}
	start, err := helpers.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate: %v", apperrors.ErrValidationFailed, err)
	}

	period := &dto.RentalPeriod{Start: start}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := helpers.ParseDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid endDate: %v", apperrors.ErrValidationFailed, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: endDate must not be before startDate", apperrors.ErrValidationFailed)
		}
		period.End = &end
	}
	return period, nil
}

// StartRental rents an available house to userID
func (s *rentalServiceImpl) StartRental(ctx context.Context, userID, houseID int64, req *dto.RentRequest) (*models.Rental, error) {
	period, err := ParseRentalPeriod(req)
	if err != nil {
		return nil, err
	}

	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if house.IsOwnedBy(userID) {
		return nil, apperrors.ErrOwnHouseRental
	}
	if house.Status != models.HouseAvailable {
		return nil, apperrors.ErrHouseNotAvailable
	}

	rental := &models.Rental{
		HouseID:   houseID,
		UserID:    userID,
		StartDate: period.Start,
		EndDate:   period.End,
	}
	if err := s.rentalRepo.StartRental(ctx, rental); err != nil {
		return nil, err
	}
	metrics.RecordRentalStarted()
	s.notifier.Notify(house.HomeownerID, EventRentalStarted, RentalEvent{
		HouseID: houseID, RentalID: rental.ID, RenterID: userID, Title: house.Title,
	})

	s.logger.Info().Int64("houseID", houseID).Int64("rentalID", rental.ID).Int64("userID", userID).Msg("Rental started")
	return rental, nil
}

// EndRental completes the current rental of a house. Only the homeowner and
// the current renter may end it.
func (s *rentalServiceImpl) EndRental(ctx context.Context, userID, houseID int64) error {
	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		return err
	}
	if house.CurrentRentalID == nil {
		return apperrors.ErrNoActiveRental
	}

	rental, err := s.rentalRepo.GetByID(ctx, *house.CurrentRentalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRentalNotFound) {
			return apperrors.ErrNoActiveRental
		}
		return err
	}
	if !house.IsOwnedBy(userID) && rental.UserID != userID {
		return apperrors.NewForbiddenError("only the homeowner or the current renter can end this rental")
	}

	if err := s.rentalRepo.EndRental(ctx, houseID, rental.ID, s.now()); err != nil {
		return err
	}
	metrics.RecordRentalEnded(RentalEndManual)

	event := RentalEvent{HouseID: houseID, RentalID: rental.ID, RenterID: rental.UserID, Title: house.Title}
	s.notifier.Notify(house.HomeownerID, EventRentalEnded, event)
	s.notifier.Notify(rental.UserID, EventRentalEnded, event)

	s.logger.Info().Int64("houseID", houseID).Int64("rentalID", rental.ID).Int64("userID", userID).Msg("Rental ended")
	return nil
}

// CompleteExpiredRentals ends every active rental whose end date has passed
// and returns how many were completed.
func (s *rentalServiceImpl) CompleteExpiredRentals(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.rentalRepo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	completed := 0
	var errs []error
	for _, rental := range expired {
		err := s.rentalRepo.EndRental(ctx, rental.HouseID, rental.ID, now)
		switch {
		case err == nil:
			completed++
			metrics.RecordRentalEnded(RentalEndExpired)
			s.notifier.Notify(rental.UserID, EventRentalExpired, RentalEvent{
				HouseID: rental.HouseID, RentalID: rental.ID, RenterID: rental.UserID,
			})
		case errors.Is(err, apperrors.ErrNoActiveRental), errors.Is(err, apperrors.ErrHouseNotFound):
			s.logger.Debug().Int64("rentalID", rental.ID).Msg("Expired rental already closed")
		default:
			s.logger.Error().Err(err).Int64("rentalID", rental.ID).Msg("Failed to complete expired rental")
			errs = append(errs, err)
		}
	}

	if completed > 0 {
		s.logger.Info().Int("completed", completed).Msg("Expired rentals completed")
	}
	return completed, errors.Join(errs...)
}
