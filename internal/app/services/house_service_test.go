package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/edustay/internal/app/auth"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

func newTestHouseService() (HouseService, *fakeHouseRepo, *fakeRentalRepo) {
	houses := newFakeHouseRepo()
	rentals := newFakeRentalRepo(houses)
	authz := appauth.NewAuthorizationService(newFakeCourseRepo(), houses)
	return NewHouseService(houses, rentals, authz, testLogger), houses, rentals
}

func sampleHouseRequest() *dto.HouseRequest {
	price, size := dto.FlexFloat(1200), dto.FlexFloat(65.5)
	bedrooms, bathrooms := dto.FlexInt(2), dto.FlexInt(1)
	return &dto.HouseRequest{
		Title:       "Sunny flat",
		Description: "Close to campus",
		Address:     "1 Main St",
		Price:       &price,
		Bedrooms:    &bedrooms,
		Bathrooms:   &bathrooms,
		Size:        &size,
		Amenities:   []string{"wifi"},
	}
}

func TestHouseService_CreateDefaults(t *testing.T) {
	svc, _, _ := newTestHouseService()

	house, err := svc.CreateHouse(context.Background(), 3, sampleHouseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.HouseAvailable, house.Status)
	assert.Equal(t, "apartment", house.Type)
	assert.Equal(t, int64(3), house.HomeownerID)
	assert.Equal(t, []string{}, house.Images)

	req := sampleHouseRequest()
	negative := dto.FlexInt(-1)
	req.Bedrooms = &negative
	_, err = svc.CreateHouse(context.Background(), 3, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestHouseService_GetHidesPrivateFieldsFromOthers(t *testing.T) {
	svc, houses, rentals := newTestHouseService()
	ctx := context.Background()
	h := houses.add(models.House{Title: "Loft", HomeownerID: 3})
	require.NoError(t, rentals.StartRental(ctx, &models.Rental{HouseID: h.ID, UserID: 8, StartDate: time.Now()}))

	public, err := svc.GetHouse(ctx, h.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, public.Rentals)
	assert.Nil(t, public.CurrentRental)
	assert.Empty(t, public.Homeowner.Email)
	assert.Equal(t, "Owner", public.Homeowner.Name)

	owner, err := svc.GetHouse(ctx, h.ID, 3)
	require.NoError(t, err)
	assert.Len(t, owner.Rentals, 1)
	require.NotNil(t, owner.CurrentRental)
	assert.Equal(t, int64(8), owner.CurrentRental.UserID)
	assert.Equal(t, "owner@example.com", owner.Homeowner.Email)

	_, err = svc.GetHouse(ctx, 999, 3)
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)
}

func TestHouseService_ListShowsOwnHouses(t *testing.T) {
	svc, houses, _ := newTestHouseService()
	houses.add(models.House{Title: "Free", HomeownerID: 3})
	houses.add(models.House{Title: "Mine, rented", HomeownerID: 4, Status: models.HouseRented})
	houses.add(models.House{Title: "Theirs, rented", HomeownerID: 3, Status: models.HouseRented})

	resp, err := svc.ListHouses(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, resp.Houses, 2)
	assert.Equal(t, "Mine, rented", resp.Houses[0].Title)

	resp, err = svc.ListHouses(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, resp.Houses, 1)
}

func TestHouseService_UpdateKeepsProtectedFields(t *testing.T) {
	svc, houses, _ := newTestHouseService()
	ctx := context.Background()
	h := houses.add(models.House{Title: "Old", HomeownerID: 3, Status: models.HouseRented})

	_, err := svc.UpdateHouse(ctx, h.ID, 4, sampleHouseRequest())
	assert.ErrorIs(t, err, apperrors.ErrNotHouseOwner)

	_, err = svc.UpdateHouse(ctx, 999, 3, sampleHouseRequest())
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)

	updated, err := svc.UpdateHouse(ctx, h.ID, 3, sampleHouseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Sunny flat", updated.Title)

	stored, err := houses.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HouseRented, stored.Status)
	assert.Equal(t, int64(3), stored.HomeownerID)
}

func TestHouseService_DeleteRefusedWhileRented(t *testing.T) {
	svc, houses, rentals := newTestHouseService()
	ctx := context.Background()
	h := houses.add(models.House{Title: "Busy", HomeownerID: 3})
	rental := &models.Rental{HouseID: h.ID, UserID: 8, StartDate: time.Now()}
	require.NoError(t, rentals.StartRental(ctx, rental))

	assert.ErrorIs(t, svc.DeleteHouse(ctx, h.ID, 8), apperrors.ErrNotHouseOwner)
	assert.ErrorIs(t, svc.DeleteHouse(ctx, h.ID, 3), apperrors.ErrHouseRented)

	require.NoError(t, rentals.EndRental(ctx, h.ID, rental.ID, time.Now()))
	require.NoError(t, svc.DeleteHouse(ctx, h.ID, 3))

	_, err := houses.GetByID(ctx, h.ID)
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)
}
