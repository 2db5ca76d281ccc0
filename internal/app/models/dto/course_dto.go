package dto

import "github.com/yigit/edustay/internal/app/models"

// CourseRequest is the payload for creating or replacing a course
type CourseRequest struct {
	Title            string        `json:"title" binding:"required,max=255"`
	Description      string        `json:"description" binding:"required"`
	FullDescription  string        `json:"fullDescription"`
	Level            string        `json:"level" binding:"required"`
	Category         string        `json:"category" binding:"required"`
	Duration         string        `json:"duration"`
	Price            string        `json:"price" binding:"required"`
	ImageURL         string        `json:"imageUrl"`
	Language         string        `json:"language"`
	Requirements     []string      `json:"requirements"`
	WhatYouWillLearn []string      `json:"whatYouWillLearn"`
	Syllabus         []models.Week `json:"syllabus"`
}

// CourseListResponse is a page of courses
type CourseListResponse struct {
	Courses    []models.Course `json:"courses"`
	Pagination PaginationInfo  `json:"pagination"`
}

// EnrollmentResponse is returned after a successful enrollment
type EnrollmentResponse struct {
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment"`
	UserID     int64              `json:"userId"`
	CourseID   int64              `json:"courseId"`
}

// EnrollmentStatusResponse tells whether the caller is enrolled in a course
type EnrollmentStatusResponse struct {
	IsEnrolled bool   `json:"isEnrolled"`
	UserID     *int64 `json:"userId,omitempty"`
	CourseID   int64  `json:"courseId"`
}

// ProgressRequest marks a topic as completed or not
type ProgressRequest struct {
	TopicID   int64 `json:"topicId" binding:"required,min=1"`
	Completed bool  `json:"completed"`
}

// RatingRequest is a 1..5 score with an optional comment
type RatingRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// RatingSummaryResponse lists ratings with aggregates
type RatingSummaryResponse struct {
	Ratings       []models.Rating `json:"ratings"`
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
}

// FavoriteResponse tells whether the caller favorited a course or house
type FavoriteResponse struct {
	IsFavorited bool `json:"isFavorited"`
}
