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

type ratingFixture struct {
	svc         RatingService
	courses     *fakeCourseRepo
	enrollments *fakeEnrollmentRepo
	houses      *fakeHouseRepo
	rentals     *fakeRentalRepo
}

func newRatingFixture() *ratingFixture {
	courses := newFakeCourseRepo()
	enrollments := newFakeEnrollmentRepo(courses)
	houses := newFakeHouseRepo()
	rentals := newFakeRentalRepo(houses)
	return &ratingFixture{
		svc:         NewRatingService(newFakeRatingRepo(), courses, enrollments, houses, rentals, testLogger),
		courses:     courses,
		enrollments: enrollments,
		houses:      houses,
		rentals:     rentals,
	}
}

func TestRatingService_CourseRequiresEnrollment(t *testing.T) {
	f := newRatingFixture()
	ctx := context.Background()
	c := f.courses.add(models.Course{Title: "Compilers", InstructorID: 1})

	_, err := f.svc.Rate(ctx, models.TargetCourse, 5, c.ID, &dto.RatingRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	_, err = f.svc.Rate(ctx, models.TargetCourse, 5, 999, &dto.RatingRequest{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = f.enrollments.Create(ctx, 5, c.ID)
	require.NoError(t, err)

	for _, bad := range []int{0, 6, -1} {
		_, err = f.svc.Rate(ctx, models.TargetCourse, 5, c.ID, &dto.RatingRequest{Rating: bad})
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	}

	comment := "great"
	_, err = f.svc.Rate(ctx, models.TargetCourse, 5, c.ID, &dto.RatingRequest{Rating: 2})
	require.NoError(t, err)
	rating, err := f.svc.Rate(ctx, models.TargetCourse, 5, c.ID, &dto.RatingRequest{Rating: 4, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Rating)

	_, err = f.enrollments.Create(ctx, 6, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Rate(ctx, models.TargetCourse, 6, c.ID, &dto.RatingRequest{Rating: 5})
	require.NoError(t, err)

	summary, err := f.svc.GetRatings(ctx, models.TargetCourse, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRatings)
	assert.InDelta(t, 4.5, summary.AverageRating, 0.0001)
	assert.Equal(t, 5, summary.Ratings[0].Rating)
}

func TestRatingService_HouseRequiresCompletedRental(t *testing.T) {
	f := newRatingFixture()
	ctx := context.Background()
	h := f.houses.add(models.House{Title: "Loft", HomeownerID: 1, Price: 900})

	_, err := f.svc.Rate(ctx, models.TargetHouse, 5, h.ID, &dto.RatingRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrRentalNotCompleted)

	rental := &models.Rental{HouseID: h.ID, UserID: 5, StartDate: time.Now()}
	require.NoError(t, f.rentals.StartRental(ctx, rental))

	_, err = f.svc.Rate(ctx, models.TargetHouse, 5, h.ID, &dto.RatingRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrRentalNotCompleted, "an active rental is not enough")

	require.NoError(t, f.rentals.EndRental(ctx, h.ID, rental.ID, time.Now()))
	_, err = f.svc.Rate(ctx, models.TargetHouse, 5, h.ID, &dto.RatingRequest{Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.Rate(ctx, models.TargetHouse, 5, 999, &dto.RatingRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)
}

func TestRatingService_EmptySummary(t *testing.T) {
	f := newRatingFixture()

	summary, err := f.svc.GetRatings(context.Background(), models.TargetHouse, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalRatings)
	assert.Equal(t, 0.0, summary.AverageRating)
	assert.NotNil(t, summary.Ratings)
}

func TestFavoriteService_Toggle(t *testing.T) {
	courses := newFakeCourseRepo()
	houses := newFakeHouseRepo()
	svc := NewFavoriteService(newFakeFavoriteRepo(), courses, houses)
	ctx := context.Background()
	c := courses.add(models.Course{Title: "Databases", InstructorID: 1})
	h := houses.add(models.House{Title: "Studio", HomeownerID: 1})

	state, err := svc.IsFavorited(ctx, models.TargetCourse, 0, c.ID)
	require.NoError(t, err)
	assert.False(t, state.IsFavorited)

	state, err = svc.Toggle(ctx, models.TargetCourse, 5, c.ID)
	require.NoError(t, err)
	assert.True(t, state.IsFavorited)

	state, err = svc.IsFavorited(ctx, models.TargetCourse, 5, c.ID)
	require.NoError(t, err)
	assert.True(t, state.IsFavorited)

	state, err = svc.IsFavorited(ctx, models.TargetHouse, 5, c.ID)
	require.NoError(t, err)
	assert.False(t, state.IsFavorited, "course and house favorites are separate")

	state, err = svc.Toggle(ctx, models.TargetCourse, 5, c.ID)
	require.NoError(t, err)
	assert.False(t, state.IsFavorited)

	state, err = svc.Toggle(ctx, models.TargetHouse, 5, h.ID)
	require.NoError(t, err)
	assert.True(t, state.IsFavorited)

	_, err = svc.Toggle(ctx, models.TargetHouse, 5, 999)
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)
}
