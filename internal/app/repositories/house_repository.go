package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/helpers"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IHouseRepository defines house listing persistence
type IHouseRepository interface {
	List(ctx context.Context, viewerID int64) ([]models.House, error)
	GetByID(ctx context.Context, id int64) (*models.House, error)
	Create(ctx context.Context, house *models.House) error
	Update(ctx context.Context, house *models.House) error
	Delete(ctx context.Context, id int64) error
}

// effectiveStatusExpr reports a house as rented while it has an active rental
// that is open-ended or has not reached its end date yet
const effectiveStatusExpr = `CASE WHEN EXISTS (
	SELECT 1 FROM rentals r
	WHERE r.house_id = h.id AND r.status = 'active' AND (r.end_date IS NULL OR r.end_date > NOW())
) THEN 'rented' ELSE h.status END`

var houseSelectColumns = []string{
	"h.id", "h.title", "h.description", "h.address", "h.price", "h.bedrooms", "h.bathrooms", "h.size",
	"h.amenities", "h.images", effectiveStatusExpr + " AS status", "h.type", "h.latitude", "h.longitude",
	"h.homeowner_id", "h.current_rental_id", "h.created_at", "h.updated_at",
	"u.name", "u.email",
}

// HouseRepository handles house database operations
type HouseRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewHouseRepository creates a new HouseRepository
func NewHouseRepository(conn db.DBTX) *HouseRepository {
	return &HouseRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanHouse reads a row selected with houseSelectColumns followed by any extra columns
func scanHouse(row pgx.Row, extra ...interface{}) (*models.House, error) {
	var (
		h                     models.House
		amenities, images     string
		ownerName, ownerEmail string
	)
	dest := append([]interface{}{
		&h.ID, &h.Title, &h.Description, &h.Address, &h.Price, &h.Bedrooms, &h.Bathrooms, &h.Size,
		&amenities, &images, &h.Status, &h.Type, &h.Latitude, &h.Longitude,
		&h.HomeownerID, &h.CurrentRentalID, &h.CreatedAt, &h.UpdatedAt,
		&ownerName, &ownerEmail,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	h.Amenities = helpers.DecodeJSONColumn[string](amenities, "houses.amenities")
	h.Images = helpers.DecodeJSONColumn[string](images, "houses.images")
	h.Homeowner = &models.UserSummary{ID: h.HomeownerID, Name: ownerName, Email: ownerEmail}
	return &h, nil
}

// List returns houses newest first: all of the viewer's own houses and every
// other house that is currently available. viewerID 0 means anonymous.
func (r *HouseRepository) List(ctx context.Context, viewerID int64) ([]models.House, error) {
	visible := squirrel.Or{
		squirrel.Expr("("+effectiveStatusExpr+") = ?", string(models.HouseAvailable)),
	}
	if viewerID > 0 {
		visible = append(visible, squirrel.Eq{"h.homeowner_id": viewerID})
	}

	sql, args, err := r.sb.Select(houseSelectColumns...).
		From("houses h").
		Join("users u ON u.id = h.homeowner_id").
		Where(visible).
		OrderBy("h.created_at DESC", "h.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list houses SQL")
		return nil, fmt.Errorf("failed to build list houses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list houses query")
		return nil, fmt.Errorf("error listing houses: %w", err)
	}
	defer rows.Close()

	houses := []models.House{}
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning house row")
			return nil, fmt.Errorf("error scanning house: %w", err)
		}
		houses = append(houses, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating houses: %w", err)
	}
	return houses, nil
}

// GetByID returns a house with its homeowner summary
func (r *HouseRepository) GetByID(ctx context.Context, id int64) (*models.House, error) {
	sql, args, err := r.sb.Select(houseSelectColumns...).
		From("houses h").
		Join("users u ON u.id = h.homeowner_id").
		Where(squirrel.Eq{"h.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get house SQL")
		return nil, fmt.Errorf("failed to build get house query: %w", err)
	}

	house, err := scanHouse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrHouseNotFound
		}
		logger.Error().Err(err).Int64("houseID", id).Msg("Error scanning house row")
		return nil, fmt.Errorf("error retrieving house: %w", err)
	}
	return house, nil
}

// Create inserts an available house
func (r *HouseRepository) Create(ctx context.Context, house *models.House) error {
	amenities, err := helpers.EncodeJSONColumn(house.Amenities)
	if err != nil {
		return fmt.Errorf("failed to encode amenities: %w", err)
	}
	images, err := helpers.EncodeJSONColumn(house.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	house.Status = models.HouseAvailable
	sql, args, err := r.sb.Insert("houses").
		Columns("title", "description", "address", "price", "bedrooms", "bathrooms", "size",
			"amenities", "images", "status", "type", "latitude", "longitude", "homeowner_id").
		Values(house.Title, house.Description, house.Address, house.Price, house.Bedrooms, house.Bathrooms,
			house.Size, amenities, images, string(house.Status), house.Type, house.Latitude, house.Longitude,
			house.HomeownerID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create house SQL")
		return fmt.Errorf("failed to build create house query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&house.ID, &house.CreatedAt, &house.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("homeownerID", house.HomeownerID).Msg("Error executing create house query")
		return fmt.Errorf("error creating house: %w", err)
	}
	return nil
}

// Update writes the client-editable fields of a house.
// Owner, status and current rental are managed elsewhere and left untouched.
func (r *HouseRepository) Update(ctx context.Context, house *models.House) error {
	amenities, err := helpers.EncodeJSONColumn(house.Amenities)
	if err != nil {
		return fmt.Errorf("failed to encode amenities: %w", err)
	}
	images, err := helpers.EncodeJSONColumn(house.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	sql, args, err := r.sb.Update("houses").
		SetMap(map[string]interface{}{
			"title":       house.Title,
			"description": house.Description,
			"address":     house.Address,
			"price":       house.Price,
			"bedrooms":    house.Bedrooms,
			"bathrooms":   house.Bathrooms,
			"size":        house.Size,
			"amenities":   amenities,
			"images":      images,
			"type":        house.Type,
			"latitude":    house.Latitude,
			"longitude":   house.Longitude,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": house.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update house SQL")
		return fmt.Errorf("failed to build update house query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&house.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrHouseNotFound
		}
		logger.Error().Err(err).Int64("houseID", house.ID).Msg("Error executing update house query")
		return fmt.Errorf("error updating house: %w", err)
	}
	return nil
}

// Delete removes a house that is not rented.
// It returns ErrHouseRented when the house exists but is rented.
func (r *HouseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("houses").
		Where(squirrel.Eq{"id": id, "current_rental_id": nil}).
		Where(squirrel.NotEq{"status": string(models.HouseRented)}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete house SQL")
		return fmt.Errorf("failed to build delete house query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("houseID", id).Msg("Error executing delete house query")
		return fmt.Errorf("error deleting house: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM houses WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("error checking house: %w", err)
	}
	if exists {
		return apperrors.ErrHouseRented
	}
	return apperrors.ErrHouseNotFound
}
