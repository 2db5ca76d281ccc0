package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/filestorage"
)

var testLogger = zerolog.Nop()

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*fakeToken{}}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &fakeToken{userID: userID, expiry: expiry}
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.revoked || t.expiry.Before(time.Now()) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	nextID  int64
	nextTop int64
	courses map[int64]*models.Course
	gets    int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int64]*models.Course{}}
}

func (r *fakeCourseRepo) add(c models.Course) *models.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.assignTopicIDs(&c)
	r.courses[c.ID] = &c
	return &c
}

func (r *fakeCourseRepo) assignTopicIDs(c *models.Course) {
	for wi := range c.Syllabus {
		for ti := range c.Syllabus[wi].Topics {
			r.nextTop++
			c.Syllabus[wi].Topics[ti].ID = r.nextTop
		}
	}
}

func (r *fakeCourseRepo) List(_ context.Context, instructorID *int64, offset uint64, limit int) ([]models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Course
	for _, c := range r.courses {
		if instructorID == nil || c.InstructorID == *instructorID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if int(offset) >= len(all) {
		return []models.Course{}, total, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) GetInstructorID(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return 0, apperrors.ErrCourseNotFound
	}
	return c.InstructorID, nil
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	course.ID = r.nextID
	course.CreatedAt = time.Now()
	course.LastUpdated = course.CreatedAt
	r.assignTopicIDs(course)
	cp := *course
	r.courses[course.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	course.LastUpdated = time.Now()
	r.assignTopicIDs(course)
	cp := *course
	r.courses[course.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) TopicBelongsToCourse(_ context.Context, topicID, courseID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[courseID]
	if !ok {
		return false, nil
	}
	for _, w := range c.Syllabus {
		for _, t := range w.Topics {
			if t.ID == topicID {
				return true, nil
			}
		}
	}
	return false, nil
}

type pair struct{ a, b int64 }

type fakeEnrollmentRepo struct {
	mu      sync.Mutex
	courses *fakeCourseRepo
	rows    map[pair]bool
	nextID  int64
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{courses: courses, rows: map[pair]bool{}}
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, userID, courseID int64) (*models.Enrollment, error) {
	if _, err := r.courses.GetInstructorID(ctx, courseID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows[pair{userID, courseID}] {
		return nil, apperrors.ErrAlreadyEnrolled
	}
	r.rows[pair{userID, courseID}] = true
	r.nextID++
	return &models.Enrollment{ID: r.nextID, UserID: userID, CourseID: courseID, CreatedAt: time.Now()}, nil
}

func (r *fakeEnrollmentRepo) Exists(_ context.Context, userID, courseID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[pair{userID, courseID}], nil
}

type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[pair]*models.TopicProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: map[pair]*models.TopicProgress{}}
}

func (r *fakeProgressRepo) Upsert(_ context.Context, userID, topicID int64, completed bool) (*models.TopicProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[pair{userID, topicID}]
	if !ok {
		p = &models.TopicProgress{ID: int64(len(r.rows) + 1), UserID: userID, TopicID: topicID}
		r.rows[pair{userID, topicID}] = p
	}
	p.Completed = completed
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *fakeProgressRepo) ListByCourse(_ context.Context, userID, _ int64) ([]models.TopicProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TopicProgress
	for k, p := range r.rows {
		if k.a == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type ratingKey struct {
	kind   models.TargetKind
	user   int64
	target int64
}

type fakeRatingRepo struct {
	mu   sync.Mutex
	seq  int64
	rows map[ratingKey]*models.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{rows: map[ratingKey]*models.Rating{}}
}

func (r *fakeRatingRepo) Upsert(_ context.Context, kind models.TargetKind, userID, targetID int64, rating int, comment *string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	k := ratingKey{kind, userID, targetID}
	row, ok := r.rows[k]
	if !ok {
		row = &models.Rating{ID: r.seq, UserID: userID, TargetID: targetID}
		r.rows[k] = row
	}
	row.Rating = rating
	row.Comment = comment
	row.CreatedAt = time.Unix(r.seq, 0)
	cp := *row
	return &cp, nil
}

func (r *fakeRatingRepo) ListByTarget(_ context.Context, kind models.TargetKind, targetID int64) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for k, row := range r.rows {
		if k.kind == kind && k.target == targetID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeFavoriteRepo struct {
	mu   sync.Mutex
	rows map[ratingKey]bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{rows: map[ratingKey]bool{}}
}

func (r *fakeFavoriteRepo) Exists(_ context.Context, kind models.TargetKind, userID, targetID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[ratingKey{kind, userID, targetID}], nil
}

func (r *fakeFavoriteRepo) Toggle(_ context.Context, kind models.TargetKind, userID, targetID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := ratingKey{kind, userID, targetID}
	if r.rows[k] {
		delete(r.rows, k)
		return false, nil
	}
	r.rows[k] = true
	return true, nil
}

type fakeHouseRepo struct {
	mu     sync.Mutex
	nextID int64
	houses map[int64]*models.House
}

func newFakeHouseRepo() *fakeHouseRepo {
	return &fakeHouseRepo{houses: map[int64]*models.House{}}
}

func (r *fakeHouseRepo) add(h models.House) *models.House {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h.ID = r.nextID
	if h.Status == "" {
		h.Status = models.HouseAvailable
	}
	if h.Homeowner == nil {
		h.Homeowner = &models.UserSummary{ID: h.HomeownerID, Name: "Owner", Email: "owner@example.com"}
	}
	r.houses[h.ID] = &h
	return &h
}

func (r *fakeHouseRepo) List(_ context.Context, viewerID int64) ([]models.House, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.House
	for _, h := range r.houses {
		if h.Status == models.HouseAvailable || h.HomeownerID == viewerID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeHouseRepo) GetByID(_ context.Context, id int64) (*models.House, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.houses[id]
	if !ok {
		return nil, apperrors.ErrHouseNotFound
	}
	cp := *h
	if h.Homeowner != nil {
		owner := *h.Homeowner
		cp.Homeowner = &owner
	}
	return &cp, nil
}

func (r *fakeHouseRepo) Create(_ context.Context, house *models.House) error {
	house.Status = models.HouseAvailable
	stored := r.add(*house)
	house.ID = stored.ID
	return nil
}

func (r *fakeHouseRepo) Update(_ context.Context, house *models.House) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.houses[house.ID]
	if !ok {
		return apperrors.ErrHouseNotFound
	}
	cp := *house
	cp.Status = existing.Status
	cp.CurrentRentalID = existing.CurrentRentalID
	cp.HomeownerID = existing.HomeownerID
	r.houses[house.ID] = &cp
	return nil
}

func (r *fakeHouseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.houses[id]
	if !ok {
		return apperrors.ErrHouseNotFound
	}
	if h.CurrentRentalID != nil {
		return apperrors.ErrHouseRented
	}
	delete(r.houses, id)
	return nil
}

type fakeRentalRepo struct {
	mu      sync.Mutex
	houses  *fakeHouseRepo
	nextID  int64
	rentals map[int64]*models.Rental
}

func newFakeRentalRepo(houses *fakeHouseRepo) *fakeRentalRepo {
	return &fakeRentalRepo{houses: houses, rentals: map[int64]*models.Rental{}}
}

func (r *fakeRentalRepo) StartRental(_ context.Context, rental *models.Rental) error {
	r.houses.mu.Lock()
	defer r.houses.mu.Unlock()
	h, ok := r.houses.houses[rental.HouseID]
	if !ok {
		return apperrors.ErrHouseNotFound
	}
	if h.Status != models.HouseAvailable || h.CurrentRentalID != nil {
		return apperrors.ErrHouseNotAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rental.ID = r.nextID
	rental.Status = models.RentalActive
	cp := *rental
	r.rentals[rental.ID] = &cp

	id := rental.ID
	h.Status = models.HouseRented
	h.CurrentRentalID = &id
	return nil
}

func (r *fakeRentalRepo) EndRental(_ context.Context, houseID, rentalID int64, endedAt time.Time) error {
	r.houses.mu.Lock()
	defer r.houses.mu.Unlock()
	h, ok := r.houses.houses[houseID]
	if !ok {
		return apperrors.ErrHouseNotFound
	}
	if h.CurrentRentalID == nil || *h.CurrentRentalID != rentalID {
		return apperrors.ErrNoActiveRental
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rental := r.rentals[rentalID]
	rental.Status = models.RentalCompleted
	rental.EndDate = &endedAt

	h.Status = models.HouseAvailable
	h.CurrentRentalID = nil
	return nil
}

func (r *fakeRentalRepo) GetByID(_ context.Context, id int64) (*models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return nil, apperrors.ErrRentalNotFound
	}
	cp := *rental
	return &cp, nil
}

func (r *fakeRentalRepo) ListByHouse(_ context.Context, houseID int64) ([]models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rental
	for _, rental := range r.rentals {
		if rental.HouseID == houseID {
			out = append(out, *rental)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRentalRepo) HasCompletedRental(_ context.Context, userID, houseID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rental := range r.rentals {
		if rental.UserID == userID && rental.HouseID == houseID && rental.Status == models.RentalCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRentalRepo) ListExpired(_ context.Context, now time.Time) ([]models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rental
	for _, rental := range r.rentals {
		if rental.Status == models.RentalActive && rental.EndDate != nil && rental.EndDate.Before(now) {
			out = append(out, *rental)
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	enrolled        []models.Course
	favoriteCourses []models.Course
	activeRentals   []models.HouseRental
	favoriteHouses  []models.House
	courseStats     []models.CourseStats
	students        int
	averageRating   float64
	homeowner       []models.House
	err             error
}

func (r *fakeStatsRepo) EnrolledCourses(context.Context, int64) ([]models.Course, error) {
	return r.enrolled, r.err
}

func (r *fakeStatsRepo) FavoriteCourses(context.Context, int64) ([]models.Course, error) {
	return r.favoriteCourses, nil
}

func (r *fakeStatsRepo) ActiveRentals(context.Context, int64) ([]models.HouseRental, error) {
	return r.activeRentals, nil
}

func (r *fakeStatsRepo) FavoriteHouses(context.Context, int64) ([]models.House, error) {
	return r.favoriteHouses, nil
}

func (r *fakeStatsRepo) InstructorCourses(context.Context, int64) ([]models.CourseStats, error) {
	return r.courseStats, nil
}

func (r *fakeStatsRepo) InstructorStudentCount(context.Context, int64) (int, error) {
	return r.students, nil
}

func (r *fakeStatsRepo) InstructorAverageRating(context.Context, int64) (float64, error) {
	return r.averageRating, nil
}

func (r *fakeStatsRepo) HomeownerHouses(context.Context, int64) ([]models.House, error) {
	return r.homeowner, nil
}

type fakeStorage struct {
	saved []string
}

func (s *fakeStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (*filestorage.FileInfo, error) {
	rel := subPath + "/stored" + strings.ToLower(fileExt(fh.Filename))
	s.saved = append(s.saved, rel)
	return &filestorage.FileInfo{
		URL:      "http://localhost:8080/uploads/" + rel,
		Path:     rel,
		Filename: fh.Filename,
		FileSize: fh.Size,
		MimeType: fh.Header.Get("Content-Type"),
	}, nil
}

func (s *fakeStorage) DeleteFile(string) error { return nil }

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

type sentEvent struct {
	userID  int64
	event   string
	payload interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (n *recordingNotifier) Notify(userID int64, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEvent{userID: userID, event: event, payload: payload})
}

func (n *recordingNotifier) recipients(event string) []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []int64
	for _, s := range n.sent {
		if s.event == event {
			ids = append(ids, s.userID)
		}
	}
	return ids
}
