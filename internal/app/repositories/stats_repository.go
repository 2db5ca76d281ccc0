package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IStatsRepository defines the read-only aggregate queries behind the dashboards
type IStatsRepository interface {
	EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error)
	FavoriteCourses(ctx context.Context, userID int64) ([]models.Course, error)
	ActiveRentals(ctx context.Context, userID int64) ([]models.HouseRental, error)
	FavoriteHouses(ctx context.Context, userID int64) ([]models.House, error)
	InstructorCourses(ctx context.Context, instructorID int64) ([]models.CourseStats, error)
	InstructorStudentCount(ctx context.Context, instructorID int64) (int, error)
	InstructorAverageRating(ctx context.Context, instructorID int64) (float64, error)
	HomeownerHouses(ctx context.Context, homeownerID int64) ([]models.House, error)
}

// StatsRepository runs dashboard queries
type StatsRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(conn db.DBTX) *StatsRepository {
	return &StatsRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StatsRepository) query(ctx context.Context, name string, q squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", name).Msg("Error building stats SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", name, err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", name).Msg("Error executing stats query")
		return nil, fmt.Errorf("error running %s query: %w", name, err)
	}
	return rows, nil
}

func (r *StatsRepository) collectCourses(ctx context.Context, name string, q squirrel.Sqlizer) ([]models.Course, error) {
	rows, err := r.query(ctx, name, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// EnrolledCourses returns the courses the user is enrolled in, most recent enrollment first
func (r *StatsRepository) EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	q := r.sb.Select(courseSelectColumns...).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Join("users u ON u.id = c.instructor_id").
		Where(squirrel.Eq{"e.user_id": userID}).
		OrderBy("e.enrolled_at DESC")
	return r.collectCourses(ctx, "enrolled courses", q)
}

// FavoriteCourses returns the user's favorite courses, most recent first
func (r *StatsRepository) FavoriteCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	q := r.sb.Select(courseSelectColumns...).
		From("course_favorites f").
		Join("courses c ON c.id = f.course_id").
		Join("users u ON u.id = c.instructor_id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("f.created_at DESC")
	return r.collectCourses(ctx, "favorite courses", q)
}

// ActiveRentals returns the user's active rentals with their houses
func (r *StatsRepository) ActiveRentals(ctx context.Context, userID int64) ([]models.HouseRental, error) {
	q := r.sb.Select(append(houseSelectColumns, "r.id", "r.start_date", "r.end_date")...).
		From("rentals r").
		Join("houses h ON h.id = r.house_id").
		Join("users u ON u.id = h.homeowner_id").
		Where(squirrel.Eq{"r.user_id": userID, "r.status": string(models.RentalActive)}).
		OrderBy("r.start_date DESC")

	rows, err := r.query(ctx, "active rentals", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.HouseRental{}
	for rows.Next() {
		rental := models.Rental{UserID: userID, Status: models.RentalActive}
		h, err := scanHouse(rows, &rental.ID, &rental.StartDate, &rental.EndDate)
		if err != nil {
			return nil, fmt.Errorf("error scanning rental: %w", err)
		}
		rental.HouseID = h.ID
		out = append(out, models.HouseRental{House: *h, Rental: rental})
	}
	return out, rows.Err()
}

// FavoriteHouses returns the user's favorite houses, most recent first
func (r *StatsRepository) FavoriteHouses(ctx context.Context, userID int64) ([]models.House, error) {
	q := r.sb.Select(houseSelectColumns...).
		From("house_favorites f").
		Join("houses h ON h.id = f.house_id").
		Join("users u ON u.id = h.homeowner_id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("f.created_at DESC")

	rows, err := r.query(ctx, "favorite houses", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	houses := []models.House{}
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning house: %w", err)
		}
		houses = append(houses, *h)
	}
	return houses, rows.Err()
}

// InstructorCourses returns every course of the instructor with its enrollment count
func (r *StatsRepository) InstructorCourses(ctx context.Context, instructorID int64) ([]models.CourseStats, error) {
	q := r.sb.Select("c.id", "c.title", "c.price", "COUNT(e.id)").
		From("courses c").
		LeftJoin("enrollments e ON e.course_id = c.id").
		Where(squirrel.Eq{"c.instructor_id": instructorID}).
		GroupBy("c.id", "c.title", "c.price").
		OrderBy("c.created_at DESC")

	rows, err := r.query(ctx, "instructor courses", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.CourseStats{}
	for rows.Next() {
		var (
			s     models.CourseStats
			count int64
		)
		if err := rows.Scan(&s.CourseID, &s.Title, &s.Price, &count); err != nil {
			return nil, fmt.Errorf("error scanning course stats: %w", err)
		}
		s.Enrollments = int(count)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// InstructorStudentCount counts distinct students across the instructor's courses
func (r *StatsRepository) InstructorStudentCount(ctx context.Context, instructorID int64) (int, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT e.user_id)
		FROM enrollments e JOIN courses c ON c.id = e.course_id
		WHERE c.instructor_id = $1`, instructorID).Scan(&count)
	if err != nil {
		logger.Error().Err(err).Int64("instructorID", instructorID).Msg("Error counting students")
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return int(count), nil
}

// InstructorAverageRating averages all ratings on the instructor's courses; 0 when there are none
func (r *StatsRepository) InstructorAverageRating(ctx context.Context, instructorID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(cr.rating), 0)::float8
		FROM course_ratings cr JOIN courses c ON c.id = cr.course_id
		WHERE c.instructor_id = $1`, instructorID).Scan(&avg)
	if err != nil {
		logger.Error().Err(err).Int64("instructorID", instructorID).Msg("Error averaging ratings")
		return 0, fmt.Errorf("error averaging ratings: %w", err)
	}
	return avg, nil
}

// HomeownerHouses returns the homeowner's houses with the current rental and renter attached
func (r *StatsRepository) HomeownerHouses(ctx context.Context, homeownerID int64) ([]models.House, error) {
	q := r.sb.Select(append(houseSelectColumns,
		"r.id", "r.user_id", "r.start_date", "r.end_date", "ru.name", "ru.email")...).
		From("houses h").
		Join("users u ON u.id = h.homeowner_id").
		LeftJoin("rentals r ON r.id = h.current_rental_id").
		LeftJoin("users ru ON ru.id = r.user_id").
		Where(squirrel.Eq{"h.homeowner_id": homeownerID}).
		OrderBy("h.created_at DESC")

	rows, err := r.query(ctx, "homeowner houses", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	houses := []models.House{}
	for rows.Next() {
		var (
			rentalID, renterID     *int64
			start, end             *time.Time
			renterName, renterMail *string
		)
		h, err := scanHouse(rows, &rentalID, &renterID, &start, &end, &renterName, &renterMail)
		if err != nil {
			return nil, fmt.Errorf("error scanning house: %w", err)
		}
		if rentalID != nil && renterID != nil && start != nil {
			h.CurrentRental = &models.Rental{
				ID:        *rentalID,
				HouseID:   h.ID,
				UserID:    *renterID,
				StartDate: *start,
				EndDate:   end,
				Status:    models.RentalActive,
				Renter:    &models.UserSummary{ID: *renterID, Name: deref(renterName), Email: deref(renterMail)},
			}
		}
		houses = append(houses, *h)
	}
	return houses, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
