package models

import "time"

// House is a rentable housing listing owned by a homeowner.
// Amenities and Images are persisted as JSON-encoded text.
type House struct {
	ID              int64        `json:"id" db:"id"`
	Title           string       `json:"title" db:"title"`
	Description     string       `json:"description" db:"description"`
	Address         string       `json:"address" db:"address"`
	Price           float64      `json:"price" db:"price"`
	Bedrooms        int          `json:"bedrooms" db:"bedrooms"`
	Bathrooms       int          `json:"bathrooms" db:"bathrooms"`
	Size            float64      `json:"size" db:"size"`
	Amenities       []string     `json:"amenities" db:"amenities"`
	Images          []string     `json:"images" db:"images"`
	Status          HouseStatus  `json:"status" db:"status"`
	Type            string       `json:"type" db:"type"`
	Latitude        *float64     `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64     `json:"longitude,omitempty" db:"longitude"`
	HomeownerID     int64        `json:"homeownerId" db:"homeowner_id"`
	Homeowner       *UserSummary `json:"homeowner,omitempty"`
	CurrentRentalID *int64       `json:"currentRentalId,omitempty" db:"current_rental_id"`
	CurrentRental   *Rental      `json:"currentRental,omitempty"`
	Rentals         []Rental     `json:"rentals,omitempty"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsOwnedBy reports whether userID is the homeowner of the house
func (h *House) IsOwnedBy(userID int64) bool {
	return userID > 0 && h.HomeownerID == userID
}

// Rental is an occupancy of a house by a renter.
// EndDate is nil while an open-ended rental is running.
type Rental struct {
	ID        int64        `json:"id" db:"id"`
	HouseID   int64        `json:"houseId" db:"house_id"`
	UserID    int64        `json:"userId" db:"user_id"`
	StartDate time.Time    `json:"startDate" db:"start_date"`
	EndDate   *time.Time   `json:"endDate,omitempty" db:"end_date"`
	Status    RentalStatus `json:"status" db:"status"`
	Renter    *UserSummary `json:"renter,omitempty"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// HouseRental pairs a rental with the house it occupies
type HouseRental struct {
	House  House
	Rental Rental
}
