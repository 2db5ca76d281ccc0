package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/services"
	"github.com/yigit/edustay/internal/middleware"
)

// EngagementController serves ratings and favorites for one kind of target.
// Courses and houses each get their own instance.
type EngagementController struct {
	kind            models.TargetKind
	param           string
	ratingService   services.RatingService
	favoriteService services.FavoriteService
}

// NewEngagementController creates a controller whose target ID is read from the param path segment
func NewEngagementController(kind models.TargetKind, param string, ratingService services.RatingService, favoriteService services.FavoriteService) *EngagementController {
	return &EngagementController{
		kind:            kind,
		param:           param,
		ratingService:   ratingService,
		favoriteService: favoriteService,
	}
}

// GetRatings godoc
// @Summary List ratings
// @Description Ratings newest first, with the average and total
// @Tags ratings
// @Produce json
// @Param courseId path int true "Course or house ID"
// @Success 200 {object} dto.APIResponse{data=dto.RatingSummaryResponse}
// @Failure 404 {object} dto.ErrorResponse "Target not found"
// @Router /courses/{courseId}/rating [get]
// @Router /housing/{houseId}/rating [get]
func (c *EngagementController) GetRatings(ctx *gin.Context) {
	targetID, ok := pathID(ctx, c.param)
	if !ok {
		return
	}

	resp, err := c.ratingService.GetRatings(ctx.Request.Context(), c.kind, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Rate godoc
// @Summary Rate a course or house
// @Description Courses require an enrollment, houses a completed rental. Rating again replaces the previous one.
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RatingRequest true "Rating"
// @Success 200 {object} dto.APIResponse{data=models.Rating}
// @Failure 400 {object} dto.ErrorResponse "Rating out of range"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled or no completed rental"
// @Router /courses/{courseId}/rating [post]
// @Router /housing/{houseId}/rating [post]
func (c *EngagementController) Rate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := pathID(ctx, c.param)
	if !ok {
		return
	}

	var req dto.RatingRequest
	if !bindJSON(ctx, &req) {
		return
	}

	rating, err := c.ratingService.Rate(ctx.Request.Context(), c.kind, userID, targetID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rating, "Rating saved"))
}

// FavoriteStatus godoc
// @Summary Favorite status
// @Tags favorites
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.FavoriteResponse}
// @Router /courses/{courseId}/favorite [get]
// @Router /housing/{houseId}/favorite [get]
func (c *EngagementController) FavoriteStatus(ctx *gin.Context) {
	targetID, ok := pathID(ctx, c.param)
	if !ok {
		return
	}

	resp, err := c.favoriteService.IsFavorited(ctx.Request.Context(), c.kind, optionalUserID(ctx), targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ToggleFavorite godoc
// @Summary Toggle favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FavoriteResponse}
// @Failure 404 {object} dto.ErrorResponse "Target not found"
// @Router /courses/{courseId}/favorite [post]
// @Router /housing/{houseId}/favorite [post]
func (c *EngagementController) ToggleFavorite(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := pathID(ctx, c.param)
	if !ok {
		return
	}

	resp, err := c.favoriteService.Toggle(ctx.Request.Context(), c.kind, userID, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
