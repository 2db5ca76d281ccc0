package models

import "time"

// Course represents a course published by an instructor.
// Requirements, WhatYouWillLearn and Syllabus are persisted as JSON-encoded text.
type Course struct {
	ID               int64        `json:"id" db:"id"`
	Title            string       `json:"title" db:"title"`
	Description      string       `json:"description" db:"description"`
	FullDescription  string       `json:"fullDescription" db:"full_description"`
	Level            string       `json:"level" db:"level"`
	Category         string       `json:"category" db:"category"`
	Duration         string       `json:"duration" db:"duration"`
	Price            string       `json:"price" db:"price"`
	ImageURL         string       `json:"imageUrl" db:"image_url"`
	Language         string       `json:"language" db:"language"`
	Requirements     []string     `json:"requirements" db:"requirements"`
	WhatYouWillLearn []string     `json:"whatYouWillLearn" db:"what_you_will_learn"`
	Syllabus         []Week       `json:"syllabus" db:"syllabus"`
	InstructorID     int64        `json:"instructorId" db:"instructor_id"`
	Instructor       *UserSummary `json:"instructor,omitempty"`
	LastUpdated      time.Time    `json:"lastUpdated" db:"last_updated"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
}

// Week is one numbered section of a course syllabus.
type Week struct {
	ID       int64   `json:"id,omitempty" db:"id"`
	Week     int     `json:"week" db:"week_number" validate:"min=1"`
	Title    string  `json:"title" db:"title" validate:"required"`
	Duration string  `json:"duration" db:"duration"`
	Topics   []Topic `json:"topics" validate:"dive"`
}

// Topic is a unit of content inside a week.
type Topic struct {
	ID      int64         `json:"id,omitempty" db:"id"`
	Title   string        `json:"title" db:"title" validate:"required"`
	Content []ContentItem `json:"content" db:"content" validate:"dive"`
}

// ContentItem is a single video or downloadable file attached to a topic.
type ContentItem struct {
	Type     ContentType `json:"type" validate:"required,oneof=video file"`
	Title    string      `json:"title" validate:"required"`
	URL      string      `json:"url" validate:"required"`
	FileType string      `json:"fileType,omitempty"`
	Duration string      `json:"duration,omitempty"`
}

// Enrollment links a student to a course
type Enrollment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CourseID  int64     `json:"courseId" db:"course_id"`
	CreatedAt time.Time `json:"createdAt" db:"enrolled_at"`
}

// TopicProgress records whether a user completed a topic
type TopicProgress struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	TopicID   int64     `json:"topicId" db:"topic_id"`
	Completed bool      `json:"completed" db:"completed"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Rating is a 1..5 score left by a user on a course or a house
type Rating struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"userId" db:"user_id"`
	TargetID  int64        `json:"targetId" db:"target_id"`
	Rating    int          `json:"rating" db:"rating"`
	Comment   *string      `json:"comment,omitempty" db:"comment"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// CourseStats aggregates enrollments for one course of an instructor
type CourseStats struct {
	CourseID    int64
	Title       string
	Price       string
	Enrollments int
}
