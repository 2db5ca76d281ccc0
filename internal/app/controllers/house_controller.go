package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/services"
	"github.com/yigit/edustay/internal/middleware"
)

// HouseController handles housing listings and rentals
type HouseController struct {
	houseService  services.HouseService
	rentalService services.RentalService
}

// NewHouseController creates a new HouseController
func NewHouseController(houseService services.HouseService, rentalService services.RentalService) *HouseController {
	return &HouseController{
		houseService:  houseService,
		rentalService: rentalService,
	}
}

// ListHouses godoc
// @Summary List houses
// @Description Available houses plus every house owned by the caller, newest first
// @Tags housing
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HouseListResponse}
// @Router /housing [get]
func (c *HouseController) ListHouses(ctx *gin.Context) {
	resp, err := c.houseService.ListHouses(ctx.Request.Context(), optionalUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetHouse godoc
// @Summary Get house by ID
// @Description Rentals and the homeowner's email are only shown to the owner
// @Tags housing
// @Produce json
// @Param houseId path int true "House ID"
// @Success 200 {object} dto.APIResponse{data=models.House}
// @Failure 404 {object} dto.ErrorResponse "House not found"
// @Router /housing/{houseId} [get]
func (c *HouseController) GetHouse(ctx *gin.Context) {
	houseID, ok := pathID(ctx, "houseId")
	if !ok {
		return
	}

	house, err := c.houseService.GetHouse(ctx.Request.Context(), houseID, optionalUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(house, ""))
}

// CreateHouse godoc
// @Summary Create a house listing
// @Tags housing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.HouseRequest true "House data"
// @Success 201 {object} dto.APIResponse{data=models.House}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Homeowners only"
// @Router /housing [post]
func (c *HouseController) CreateHouse(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.HouseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	house, err := c.houseService.CreateHouse(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(house, "House created successfully"))
}

// UpdateHouse godoc
// @Summary Update a house listing
// @Tags housing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param houseId path int true "House ID"
// @Param request body dto.HouseRequest true "House data"
// @Success 200 {object} dto.APIResponse{data=models.House}
// @Failure 403 {object} dto.ErrorResponse "Not the homeowner"
// @Failure 404 {object} dto.ErrorResponse "House not found"
// @Router /housing/{houseId} [put]
func (c *HouseController) UpdateHouse(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	houseID, ok := pathID(ctx, "houseId")
	if !ok {
		return
	}

	var req dto.HouseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	house, err := c.houseService.UpdateHouse(ctx.Request.Context(), houseID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(house, "House updated successfully"))
}

// DeleteHouse godoc
// @Summary Delete a house listing
// @Tags housing
// @Produce json
// @Security BearerAuth
// @Param houseId path int true "House ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not the homeowner"
// @Failure 404 {object} dto.ErrorResponse "House not found"
// @Failure 409 {object} dto.ErrorResponse "House is rented"
// @Router /housing/{houseId} [delete]
func (c *HouseController) DeleteHouse(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	houseID, ok := pathID(ctx, "houseId")
	if !ok {
		return
	}

	if err := c.houseService.DeleteHouse(ctx.Request.Context(), houseID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "House deleted successfully"})
}

// RentHouse godoc
// @Summary Rent a house
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param houseId path int true "House ID"
// @Param request body dto.RentRequest true "Rental period"
// @Success 201 {object} dto.APIResponse{data=models.Rental}
// @Failure 400 {object} dto.ErrorResponse "Invalid dates, house not available or own house"
// @Failure 404 {object} dto.ErrorResponse "House not found"
// @Router /housing/{houseId}/rent [post]
func (c *HouseController) RentHouse(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	houseID, ok := pathID(ctx, "houseId")
	if !ok {
		return
	}

	var req dto.RentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	rental, err := c.rentalService.StartRental(ctx.Request.Context(), userID, houseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(rental, "Rental started"))
}

// EndRental godoc
// @Summary End the current rental
// @Description Either the homeowner or the current renter may end a rental
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param houseId path int true "House ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "No active rental"
// @Failure 403 {object} dto.ErrorResponse "Neither owner nor renter"
// @Failure 404 {object} dto.ErrorResponse "House not found"
// @Router /housing/{houseId}/rent [delete]
func (c *HouseController) EndRental(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	houseID, ok := pathID(ctx, "houseId")
	if !ok {
		return
	}

	if err := c.rentalService.EndRental(ctx.Request.Context(), userID, houseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
