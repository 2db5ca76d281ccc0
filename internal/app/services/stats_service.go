package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"golang.org/x/sync/errgroup"
)

// StatsService builds the per-role dashboards
type StatsService interface {
	UserStats(ctx context.Context, userID int64) (*dto.UserStatsResponse, error)
	InstructorStats(ctx context.Context, instructorID int64) (*dto.InstructorStatsResponse, error)
	HomeownerStats(ctx context.Context, homeownerID int64) (*dto.HomeownerStatsResponse, error)
}

type statsServiceImpl struct {
	statsRepo repositories.IStatsRepository
}

// NewStatsService creates a new stats service instance
func NewStatsService(statsRepo repositories.IStatsRepository) StatsService {
	return &statsServiceImpl{statsRepo: statsRepo}
}

// UserStats collects the caller's courses, favorites and active rentals
func (s *statsServiceImpl) UserStats(ctx context.Context, userID int64) (*dto.UserStatsResponse, error) {
	var (
		enrolled, favCourses []models.Course
		rentals              []models.HouseRental
		favHouses            []models.House
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		enrolled, err = s.statsRepo.EnrolledCourses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		favCourses, err = s.statsRepo.FavoriteCourses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		rentals, err = s.statsRepo.ActiveRentals(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		favHouses, err = s.statsRepo.FavoriteHouses(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rented := make([]dto.RentedHouse, 0, len(rentals))
	for _, hr := range rentals {
		rented = append(rented, dto.RentedHouse{
			House:     hr.House,
			RentalID:  hr.Rental.ID,
			StartDate: hr.Rental.StartDate,
			EndDate:   hr.Rental.EndDate,
		})
	}

	resp := &dto.UserStatsResponse{
		EnrolledCourses: orEmpty(enrolled),
		FavoriteCourses: orEmpty(favCourses),
		RentedHouses:    rented,
		FavoriteHouses:  orEmpty(favHouses),
	}
	resp.TotalEnrolled = len(resp.EnrolledCourses)
	resp.TotalFavorites = len(resp.FavoriteCourses)
	resp.TotalRented = len(resp.RentedHouses)
	resp.TotalFavoriteHouses = len(resp.FavoriteHouses)
	return resp, nil
}

// InstructorStats sums enrollments and revenue over the instructor's courses.
// Prices that do not parse as a number contribute no revenue.
func (s *statsServiceImpl) InstructorStats(ctx context.Context, instructorID int64) (*dto.InstructorStatsResponse, error) {
	var (
		courses  []models.CourseStats
		students int
		average  float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.statsRepo.InstructorCourses(gctx, instructorID)
		return err
	})
	g.Go(func() (err error) {
		students, err = s.statsRepo.InstructorStudentCount(gctx, instructorID)
		return err
	})
	g.Go(func() (err error) {
		average, err = s.statsRepo.InstructorAverageRating(gctx, instructorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.InstructorStatsResponse{
		TotalCourses:  len(courses),
		TotalStudents: students,
		AverageRating: average,
		Courses:       make([]dto.InstructorCourseStats, 0, len(courses)),
	}
	for _, c := range courses {
		revenue := parsePrice(c.Price) * float64(c.Enrollments)
		resp.TotalRevenue += revenue
		resp.Courses = append(resp.Courses, dto.InstructorCourseStats{
			ID:          c.CourseID,
			Title:       c.Title,
			Price:       c.Price,
			Enrollments: c.Enrollments,
			Revenue:     revenue,
		})
	}
	return resp, nil
}

// HomeownerStats counts rented houses and the revenue of those with a current rental
func (s *statsServiceImpl) HomeownerStats(ctx context.Context, homeownerID int64) (*dto.HomeownerStatsResponse, error) {
	houses, err := s.statsRepo.HomeownerHouses(ctx, homeownerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.HomeownerStatsResponse{
		TotalHouses: len(houses),
		Houses:      make([]dto.HomeownerHouse, 0, len(houses)),
	}
	for _, h := range houses {
		if h.Status == models.HouseRented {
			resp.ActiveRentals++
		}
		entry := dto.HomeownerHouse{House: h}
		if h.CurrentRental != nil {
			resp.TotalRevenue += h.Price
			entry.CurrentRenter = h.CurrentRental.Renter
		}
		resp.Houses = append(resp.Houses, entry)
	}
	return resp, nil
}

// parsePrice accepts prices such as "49.99" or "$20"; anything else counts as 0
func parsePrice(price string) float64 {
	price = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(price), "$"))
	v, err := strconv.ParseFloat(price, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
