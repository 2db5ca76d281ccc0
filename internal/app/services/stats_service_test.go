package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
)

func TestStatsService_InstructorRevenue(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{
		courseStats: []models.CourseStats{
			{CourseID: 1, Title: "Go", Price: "49.99", Enrollments: 2},
			{CourseID: 2, Title: "Rust", Price: "$10", Enrollments: 3},
			{CourseID: 3, Title: "Free", Price: "free", Enrollments: 100},
		},
		students:      4,
		averageRating: 4.25,
	})

	resp, err := svc.InstructorStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalCourses)
	assert.Equal(t, 4, resp.TotalStudents)
	assert.InDelta(t, 129.98, resp.TotalRevenue, 0.001)
	assert.Equal(t, 4.25, resp.AverageRating)
	require.Len(t, resp.Courses, 3)
	assert.Zero(t, resp.Courses[2].Revenue)
}

func TestStatsService_HomeownerRevenue(t *testing.T) {
	renter := &models.UserSummary{ID: 8, Name: "Renter", Email: "renter@example.com"}
	svc := NewStatsService(&fakeStatsRepo{
		homeowner: []models.House{
			{ID: 1, Price: 1000, Status: models.HouseRented, CurrentRental: &models.Rental{ID: 5, Renter: renter}},
			{ID: 2, Price: 700, Status: models.HouseAvailable},
			{ID: 3, Price: 300, Status: models.HouseRented},
		},
	})

	resp, err := svc.HomeownerStats(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalHouses)
	assert.Equal(t, 2, resp.ActiveRentals)
	assert.Equal(t, 1000.0, resp.TotalRevenue)
	assert.Equal(t, renter, resp.Houses[0].CurrentRenter)
	assert.Nil(t, resp.Houses[1].CurrentRenter)
}

func TestStatsService_UserStats(t *testing.T) {
	end := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	svc := NewStatsService(&fakeStatsRepo{
		enrolled: []models.Course{{ID: 1}, {ID: 2}},
		activeRentals: []models.HouseRental{{
			House:  models.House{ID: 4, Title: "Loft"},
			Rental: models.Rental{ID: 9, StartDate: end.AddDate(0, -3, 0), EndDate: &end},
		}},
	})

	resp, err := svc.UserStats(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalEnrolled)
	assert.Equal(t, 0, resp.TotalFavorites)
	assert.NotNil(t, resp.FavoriteCourses)
	require.Len(t, resp.RentedHouses, 1)
	assert.Equal(t, int64(9), resp.RentedHouses[0].RentalID)
	assert.Equal(t, "Loft", resp.RentedHouses[0].Title)
	assert.Equal(t, 1, resp.TotalRented)
}

func TestStatsService_UserStatsError(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{err: errors.New("db down")})

	_, err := svc.UserStats(context.Background(), 5)
	assert.EqualError(t, err, "db down")
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 49.99, parsePrice(" 49.99 "))
	assert.Equal(t, 20.0, parsePrice("$20"))
	assert.Zero(t, parsePrice(""))
	assert.Zero(t, parsePrice("NaN"))
	assert.Zero(t, parsePrice("contact us"))
}
