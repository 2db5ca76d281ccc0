package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/services"
	"github.com/yigit/edustay/internal/middleware"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

// UploadController handles multipart file uploads
type UploadController struct {
	uploadService services.UploadService
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService services.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

// UploadCourseFile godoc
// @Summary Upload a course file
// @Description type=course-image stores a cover image, anything else stores topic content under weekId/topicId
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param type formData string false "course-image or topic-content"
// @Param weekId formData string false "Week number, required for topic content"
// @Param topicId formData string false "Topic ID, required for topic content"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or invalid parameters"
// @Router /upload [post]
func (c *UploadController) UploadCourseFile(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("No file uploaded"))
		return
	}

	kind := dto.UploadKind(ctx.PostForm("type"))
	resp, err := c.uploadService.UploadCourseFile(ctx.Request.Context(), fileHeader, kind, ctx.PostForm("weekId"), ctx.PostForm("topicId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "File uploaded successfully"))
}

// UploadHouseImage godoc
// @Summary Upload a house image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image to upload"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or not an image"
// @Router /housing/upload [post]
func (c *UploadController) UploadHouseImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("No file uploaded"))
		return
	}

	resp, err := c.uploadService.UploadHouseImage(ctx.Request.Context(), fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Image uploaded successfully"))
}
