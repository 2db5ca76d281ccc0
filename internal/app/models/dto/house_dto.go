package dto

import (
	"time"

	"github.com/yigit/edustay/internal/app/models"
)

// HouseRequest is the payload for creating or updating a house listing.
// Ownership, status and the current rental are never taken from the client.
// Numeric fields accept JSON numbers or numeric strings.
type HouseRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"required"`
	Address     string     `json:"address" binding:"required"`
	Price       *FlexFloat `json:"price" binding:"required,gte=0" swaggertype:"number"`
	Bedrooms    *FlexInt   `json:"bedrooms" binding:"required,gte=0" swaggertype:"integer"`
	Bathrooms   *FlexInt   `json:"bathrooms" binding:"required,gte=0" swaggertype:"integer"`
	Size        *FlexFloat `json:"size" binding:"required,gte=0" swaggertype:"number"`
	Amenities   []string   `json:"amenities"`
	Images      []string   `json:"images"`
	Type        string     `json:"type"`
	Latitude    *FlexFloat `json:"latitude" binding:"omitempty,gte=-90,lte=90" swaggertype:"number"`
	Longitude   *FlexFloat `json:"longitude" binding:"omitempty,gte=-180,lte=180" swaggertype:"number"`
}

// HouseListResponse wraps the visible houses
type HouseListResponse struct {
	Houses []models.House `json:"houses"`
}

// RentRequest starts a rental. Dates are RFC 3339 or YYYY-MM-DD.
type RentRequest struct {
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// RentalPeriod is a parsed RentRequest
type RentalPeriod struct {
	Start time.Time
	End   *time.Time
}
