package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

func newTestRentalService(now time.Time) (*rentalServiceImpl, *fakeHouseRepo, *fakeRentalRepo) {
	houses := newFakeHouseRepo()
	rentals := newFakeRentalRepo(houses)
	svc := NewRentalService(houses, rentals, &recordingNotifier{}, testLogger).(*rentalServiceImpl)
	svc.now = func() time.Time { return now }
	return svc, houses, rentals
}

func sentTo(svc *rentalServiceImpl, event string) []int64 {
	return svc.notifier.(*recordingNotifier).recipients(event)
}

func strPtr(s string) *string { return &s }

func TestParseRentalPeriod(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.RentRequest
		wantEnd bool
		wantErr bool
	}{
		{name: "start only", req: dto.RentRequest{StartDate: "2025-03-01"}},
		{name: "start and end", req: dto.RentRequest{StartDate: "2025-03-01", EndDate: strPtr("2025-06-01T00:00:00Z")}, wantEnd: true},
		{name: "empty end is open ended", req: dto.RentRequest{StartDate: "2025-03-01", EndDate: strPtr("")}},
		{name: "missing start", req: dto.RentRequest{}, wantErr: true},
		{name: "garbage start", req: dto.RentRequest{StartDate: "soon"}, wantErr: true},
		{name: "end before start", req: dto.RentRequest{StartDate: "2025-03-01", EndDate: strPtr("2025-02-01")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := ParseRentalPeriod(&tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, period.End != nil)
		})
	}
}

func TestRentalService_StartRental(t *testing.T) {
	svc, houses, _ := newTestRentalService(time.Now())
	ctx := context.Background()
	h := houses.add(models.House{Title: "Cabin", HomeownerID: 3})
	req := &dto.RentRequest{StartDate: "2025-03-01"}

	_, err := svc.StartRental(ctx, 3, h.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrOwnHouseRental)

	_, err = svc.StartRental(ctx, 8, 999, req)
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)

	rental, err := svc.StartRental(ctx, 8, h.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.RentalActive, rental.Status)

	stored, err := houses.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HouseRented, stored.Status)
	require.NotNil(t, stored.CurrentRentalID)
	assert.Equal(t, rental.ID, *stored.CurrentRentalID)

	_, err = svc.StartRental(ctx, 9, h.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrHouseNotAvailable)

	assert.Equal(t, []int64{3}, sentTo(svc, EventRentalStarted))
}

func TestRentalService_EndRental(t *testing.T) {
	svc, houses, rentals := newTestRentalService(time.Now())
	ctx := context.Background()
	h := houses.add(models.House{Title: "Cabin", HomeownerID: 3})

	assert.ErrorIs(t, svc.EndRental(ctx, 8, h.ID), apperrors.ErrNoActiveRental)
	assert.ErrorIs(t, svc.EndRental(ctx, 8, 999), apperrors.ErrHouseNotFound)

	rental, err := svc.StartRental(ctx, 8, h.ID, &dto.RentRequest{StartDate: "2025-03-01"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.EndRental(ctx, 9, h.ID), apperrors.ErrPermissionDenied)

	require.NoError(t, svc.EndRental(ctx, 8, h.ID))

	stored, err := houses.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HouseAvailable, stored.Status)
	assert.Nil(t, stored.CurrentRentalID)

	ended, err := rentals.GetByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalCompleted, ended.Status)
	assert.NotNil(t, ended.EndDate)
	assert.ElementsMatch(t, []int64{3, 8}, sentTo(svc, EventRentalEnded))

	// the homeowner may end a rental too
	_, err = svc.StartRental(ctx, 8, h.ID, &dto.RentRequest{StartDate: "2025-07-01"})
	require.NoError(t, err)
	require.NoError(t, svc.EndRental(ctx, 3, h.ID))
}

func TestRentalService_CompleteExpiredRentals(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, houses, _ := newTestRentalService(now)
	ctx := context.Background()

	expiredHouse := houses.add(models.House{Title: "Expired", HomeownerID: 3})
	openHouse := houses.add(models.House{Title: "Open ended", HomeownerID: 3})
	futureHouse := houses.add(models.House{Title: "Future", HomeownerID: 3})

	_, err := svc.StartRental(ctx, 8, expiredHouse.ID, &dto.RentRequest{StartDate: "2025-01-01", EndDate: strPtr("2025-05-01")})
	require.NoError(t, err)
	_, err = svc.StartRental(ctx, 8, openHouse.ID, &dto.RentRequest{StartDate: "2025-01-01"})
	require.NoError(t, err)
	_, err = svc.StartRental(ctx, 8, futureHouse.ID, &dto.RentRequest{StartDate: "2025-01-01", EndDate: strPtr("2025-12-01")})
	require.NoError(t, err)

	completed, err := svc.CompleteExpiredRentals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, []int64{8}, sentTo(svc, EventRentalExpired))

	for id, want := range map[int64]models.HouseStatus{
		expiredHouse.ID: models.HouseAvailable,
		openHouse.ID:    models.HouseRented,
		futureHouse.ID:  models.HouseRented,
	} {
		h, err := houses.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, h.Status, h.Title)
	}

	completed, err = svc.CompleteExpiredRentals(ctx)
	require.NoError(t, err)
	assert.Zero(t, completed)
}
