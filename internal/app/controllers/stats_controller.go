package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/services"
	"github.com/yigit/edustay/internal/middleware"
)

// StatsController serves the per-role dashboards
type StatsController struct {
	statsService services.StatsService
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService services.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// UserStats godoc
// @Summary Student dashboard
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserStatsResponse}
// @Router /user/stats [get]
func (c *StatsController) UserStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.UserStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// InstructorStats godoc
// @Summary Instructor dashboard
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.InstructorStatsResponse}
// @Failure 403 {object} dto.ErrorResponse "Instructors only"
// @Router /instructor/stats [get]
func (c *StatsController) InstructorStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.InstructorStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// HomeownerStats godoc
// @Summary Homeowner dashboard
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.HomeownerStatsResponse}
// @Failure 403 {object} dto.ErrorResponse "Homeowners only"
// @Router /homeowner/stats [get]
func (c *StatsController) HomeownerStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.HomeownerStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}
