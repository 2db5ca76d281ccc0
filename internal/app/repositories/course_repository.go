package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/helpers"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// ICourseRepository defines course and syllabus persistence
type ICourseRepository interface {
	List(ctx context.Context, instructorID *int64, offset uint64, limit int) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetInstructorID(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	TopicBelongsToCourse(ctx context.Context, topicID, courseID int64) (bool, error)
}

var courseSelectColumns = []string{
	"c.id", "c.title", "c.description", "c.full_description", "c.level", "c.category",
	"c.duration", "c.price", "c.image_url", "c.language",
	"c.requirements", "c.what_you_will_learn", "c.syllabus",
	"c.instructor_id", "c.last_updated", "c.created_at",
	"u.name", "u.email",
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(conn db.DBTX) *CourseRepository {
	return &CourseRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanCourse reads a row selected with courseSelectColumns
func scanCourse(row pgx.Row) (*models.Course, error) {
	var (
		c                               models.Course
		requirements, learn, syllabus   string
		instructorName, instructorEmail string
	)
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.FullDescription, &c.Level, &c.Category,
		&c.Duration, &c.Price, &c.ImageURL, &c.Language,
		&requirements, &learn, &syllabus,
		&c.InstructorID, &c.LastUpdated, &c.CreatedAt,
		&instructorName, &instructorEmail,
	)
	if err != nil {
		return nil, err
	}

	c.Requirements = helpers.DecodeJSONColumn[string](requirements, "courses.requirements")
	c.WhatYouWillLearn = helpers.DecodeJSONColumn[string](learn, "courses.what_you_will_learn")
	c.Syllabus = helpers.DecodeJSONColumn[models.Week](syllabus, "courses.syllabus")
	c.Instructor = &models.UserSummary{ID: c.InstructorID, Name: instructorName, Email: instructorEmail}
	return &c, nil
}

// List returns courses newest first. A non-nil instructorID restricts the list to that instructor.
func (r *CourseRepository) List(ctx context.Context, instructorID *int64, offset uint64, limit int) ([]models.Course, int64, error) {
	countQuery := r.sb.Select("COUNT(*)").From("courses c")
	listQuery := r.sb.Select(courseSelectColumns...).
		From("courses c").
		Join("users u ON u.id = c.instructor_id").
		OrderBy("c.created_at DESC", "c.id DESC").
		Offset(offset).
		Limit(uint64(limit))

	if instructorID != nil {
		countQuery = countQuery.Where(squirrel.Eq{"c.instructor_id": *instructorID})
		listQuery = listQuery.Where(squirrel.Eq{"c.instructor_id": *instructorID})
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count courses SQL")
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	sql, args, err := listQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course row")
			return nil, 0, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, total, nil
}

// GetByID returns a course with its instructor. The syllabus is rebuilt from
// the week and topic rows; courses without week rows keep the stored JSON syllabus.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseSelectColumns...).
		From("courses c").
		Join("users u ON u.id = c.instructor_id").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	weeks, err := r.loadSyllabus(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(weeks) > 0 {
		course.Syllabus = weeks
	}

	return course, nil
}

func (r *CourseRepository) loadSyllabus(ctx context.Context, courseID int64) ([]models.Week, error) {
	sql, args, err := r.sb.Select("id", "week_number", "title", "duration").
		From("weeks").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("week_number").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list weeks SQL")
		return nil, fmt.Errorf("failed to build list weeks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list weeks query")
		return nil, fmt.Errorf("error listing weeks: %w", err)
	}

	weeks := []models.Week{}
	index := map[int64]int{}
	for rows.Next() {
		w := models.Week{Topics: []models.Topic{}}
		if err := rows.Scan(&w.ID, &w.Week, &w.Title, &w.Duration); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning week: %w", err)
		}
		index[w.ID] = len(weeks)
		weeks = append(weeks, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weeks: %w", err)
	}
	if len(weeks) == 0 {
		return weeks, nil
	}

	sql, args, err = r.sb.Select("t.id", "t.week_id", "t.title", "t.content").
		From("topics t").
		Join("weeks w ON w.id = t.week_id").
		Where(squirrel.Eq{"w.course_id": courseID}).
		OrderBy("w.week_number", "t.position", "t.id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list topics SQL")
		return nil, fmt.Errorf("failed to build list topics query: %w", err)
	}

	topicRows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list topics query")
		return nil, fmt.Errorf("error listing topics: %w", err)
	}
	defer topicRows.Close()

	for topicRows.Next() {
		var (
			t       models.Topic
			weekID  int64
			content string
		)
		if err := topicRows.Scan(&t.ID, &weekID, &t.Title, &content); err != nil {
			return nil, fmt.Errorf("error scanning topic: %w", err)
		}
		t.Content = helpers.DecodeJSONColumn[models.ContentItem](content, "topics.content")
		if i, ok := index[weekID]; ok {
			weeks[i].Topics = append(weeks[i].Topics, t)
		}
	}
	if err := topicRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}

	return weeks, nil
}

// GetInstructorID returns the owner of a course
func (r *CourseRepository) GetInstructorID(ctx context.Context, id int64) (int64, error) {
	var instructorID int64
	err := r.db.QueryRow(ctx, `SELECT instructor_id FROM courses WHERE id = $1`, id).Scan(&instructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error fetching course owner")
		return 0, fmt.Errorf("error retrieving course owner: %w", err)
	}
	return instructorID, nil
}

type courseColumns struct {
	requirements string
	learn        string
	syllabus     string
}

func encodeCourseColumns(c *models.Course) (courseColumns, error) {
	var cols courseColumns
	var err error
	if cols.requirements, err = helpers.EncodeJSONColumn(c.Requirements); err != nil {
		return cols, fmt.Errorf("failed to encode requirements: %w", err)
	}
	if cols.learn, err = helpers.EncodeJSONColumn(c.WhatYouWillLearn); err != nil {
		return cols, fmt.Errorf("failed to encode what you will learn: %w", err)
	}
	if cols.syllabus, err = helpers.EncodeJSONColumn(c.Syllabus); err != nil {
		return cols, fmt.Errorf("failed to encode syllabus: %w", err)
	}
	return cols, nil
}

// Create inserts the course and its week and topic rows in one transaction
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	cols, err := encodeCourseColumns(course)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Insert("courses").
		Columns("title", "description", "full_description", "level", "category", "duration",
			"price", "image_url", "language", "requirements", "what_you_will_learn", "syllabus",
			"instructor_id").
		Values(course.Title, course.Description, course.FullDescription, course.Level, course.Category,
			course.Duration, course.Price, course.ImageURL, course.Language,
			cols.requirements, cols.learn, cols.syllabus, course.InstructorID).
		Suffix("RETURNING id, last_updated, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.LastUpdated, &course.CreatedAt); err != nil {
			logger.Error().Err(err).Int64("instructorID", course.InstructorID).Msg("Error executing create course query")
			return fmt.Errorf("error creating course: %w", err)
		}
		return r.insertSyllabus(ctx, tx, course.ID, course.Syllabus)
	})
}

// Update rewrites the course fields and reconciles its week and topic rows in one
// transaction. Rows are matched by ID, so progress on kept topics survives the edit.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	cols, err := encodeCourseColumns(course)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"title":               course.Title,
			"description":         course.Description,
			"full_description":    course.FullDescription,
			"level":               course.Level,
			"category":            course.Category,
			"duration":            course.Duration,
			"price":               course.Price,
			"image_url":           course.ImageURL,
			"language":            course.Language,
			"requirements":        cols.requirements,
			"what_you_will_learn": cols.learn,
			"syllabus":            cols.syllabus,
			"last_updated":        squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": course.ID}).
		Suffix("RETURNING last_updated, created_at, instructor_id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update course SQL")
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, sql, args...).Scan(&course.LastUpdated, &course.CreatedAt, &course.InstructorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrCourseNotFound
			}
			logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
			return fmt.Errorf("error updating course: %w", err)
		}

		return r.syncSyllabus(ctx, tx, course.ID, course.Syllabus)
	})
}

// syncSyllabus updates the weeks and topics that still exist, inserts new ones and
// deletes only the rows missing from weeks. A week without an ID is matched to the
// stored week with the same number. Topic IDs from other courses are never adopted.
func (r *CourseRepository) syncSyllabus(ctx context.Context, tx pgx.Tx, courseID int64, weeks []models.Week) error {
	storedWeeks, err := r.storedWeeks(ctx, tx, courseID)
	if err != nil {
		return err
	}
	storedTopics, err := r.storedTopicIDs(ctx, tx, courseID)
	if err != nil {
		return err
	}

	byNumber := make(map[int]int64, len(storedWeeks))
	for id, number := range storedWeeks {
		byNumber[number] = id
	}

	keptWeeks := make(map[int64]bool, len(weeks))
	keptTopics := make(map[int64]bool)

	for wi := range weeks {
		week := &weeks[wi]
		if _, ok := storedWeeks[week.ID]; !ok {
			week.ID = 0
			if id, ok := byNumber[week.Week]; ok && !keptWeeks[id] {
				week.ID = id
			}
		}

		if week.ID == 0 || keptWeeks[week.ID] {
			if err := r.insertWeek(ctx, tx, courseID, week); err != nil {
				return err
			}
		} else {
			sql, args, err := r.sb.Update("weeks").
				Set("week_number", week.Week).
				Set("title", week.Title).
				Set("duration", week.Duration).
				Where(squirrel.Eq{"id": week.ID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update week query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				logger.Error().Err(err).Int64("weekID", week.ID).Msg("Error updating week")
				return fmt.Errorf("error updating week %d: %w", week.Week, err)
			}
		}
		keptWeeks[week.ID] = true

		for ti := range week.Topics {
			topic := &week.Topics[ti]
			if !storedTopics[topic.ID] || keptTopics[topic.ID] {
				if err := r.insertTopic(ctx, tx, week.ID, ti, topic); err != nil {
					return err
				}
				keptTopics[topic.ID] = true
				continue
			}

			content, err := helpers.EncodeJSONColumn(topic.Content)
			if err != nil {
				return fmt.Errorf("failed to encode topic content: %w", err)
			}
			sql, args, err := r.sb.Update("topics").
				Set("week_id", week.ID).
				Set("title", topic.Title).
				Set("content", content).
				Set("position", ti).
				Where(squirrel.Eq{"id": topic.ID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update topic query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				logger.Error().Err(err).Int64("topicID", topic.ID).Msg("Error updating topic")
				return fmt.Errorf("error updating topic: %w", err)
			}
			keptTopics[topic.ID] = true
		}
	}

	// Topics moved out of a removed week were re-parented above, so the week
	// delete below only cascades to topics that are gone too.
	var staleTopics []int64
	for id := range storedTopics {
		if !keptTopics[id] {
			staleTopics = append(staleTopics, id)
		}
	}
	if err := r.deleteRows(ctx, tx, "topics", staleTopics); err != nil {
		return err
	}

	var staleWeeks []int64
	for id := range storedWeeks {
		if !keptWeeks[id] {
			staleWeeks = append(staleWeeks, id)
		}
	}
	return r.deleteRows(ctx, tx, "weeks", staleWeeks)
}

// storedWeeks maps the course's week IDs to their week numbers
func (r *CourseRepository) storedWeeks(ctx context.Context, tx pgx.Tx, courseID int64) (map[int64]int, error) {
	sql, args, err := r.sb.Select("id", "week_number").
		From("weeks").
		Where(squirrel.Eq{"course_id": courseID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stored weeks query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error loading stored weeks")
		return nil, fmt.Errorf("error loading weeks: %w", err)
	}
	defer rows.Close()

	weeks := make(map[int64]int)
	for rows.Next() {
		var id int64
		var number int
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("error scanning week: %w", err)
		}
		weeks[id] = number
	}
	return weeks, rows.Err()
}

// storedTopicIDs returns the IDs of every topic under the course
func (r *CourseRepository) storedTopicIDs(ctx context.Context, tx pgx.Tx, courseID int64) (map[int64]bool, error) {
	sql, args, err := r.sb.Select("t.id").
		From("topics t").
		Join("weeks w ON w.id = t.week_id").
		Where(squirrel.Eq{"w.course_id": courseID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stored topics query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error loading stored topics")
		return nil, fmt.Errorf("error loading topics: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning topic: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *CourseRepository) deleteRows(ctx context.Context, tx pgx.Tx, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sql, args, err := r.sb.Delete(table).Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete %s query: %w", table, err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error deleting removed syllabus rows")
		return fmt.Errorf("error deleting %s: %w", table, err)
	}
	return nil
}

// insertSyllabus writes week and topic rows and assigns their IDs back into weeks
func (r *CourseRepository) insertSyllabus(ctx context.Context, tx pgx.Tx, courseID int64, weeks []models.Week) error {
	for wi := range weeks {
		week := &weeks[wi]
		if err := r.insertWeek(ctx, tx, courseID, week); err != nil {
			return err
		}
		for ti := range week.Topics {
			if err := r.insertTopic(ctx, tx, week.ID, ti, &week.Topics[ti]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *CourseRepository) insertWeek(ctx context.Context, tx pgx.Tx, courseID int64, week *models.Week) error {
	sql, args, err := r.sb.Insert("weeks").
		Columns("course_id", "week_number", "title", "duration").
		Values(courseID, week.Week, week.Title, week.Duration).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create week query: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&week.ID); err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Int("week", week.Week).Msg("Error inserting week")
		return fmt.Errorf("error creating week %d: %w", week.Week, err)
	}
	return nil
}

func (r *CourseRepository) insertTopic(ctx context.Context, tx pgx.Tx, weekID int64, position int, topic *models.Topic) error {
	content, err := helpers.EncodeJSONColumn(topic.Content)
	if err != nil {
		return fmt.Errorf("failed to encode topic content: %w", err)
	}

	sql, args, err := r.sb.Insert("topics").
		Columns("week_id", "title", "content", "position").
		Values(weekID, topic.Title, content, position).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create topic query: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&topic.ID); err != nil {
		logger.Error().Err(err).Int64("weekID", weekID).Msg("Error inserting topic")
		return fmt.Errorf("error creating topic: %w", err)
	}
	return nil
}

// Delete removes a course; dependent rows go with it through ON DELETE CASCADE
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete course SQL")
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// TopicBelongsToCourse reports whether topicID is part of the course syllabus
func (r *CourseRepository) TopicBelongsToCourse(ctx context.Context, topicID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM topics t JOIN weeks w ON w.id = t.week_id
			WHERE t.id = $1 AND w.course_id = $2
		)`, topicID, courseID).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("topicID", topicID).Msg("Error checking topic membership")
		return false, fmt.Errorf("error checking topic: %w", err)
	}
	return exists, nil
}
