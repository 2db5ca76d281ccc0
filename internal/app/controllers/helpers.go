// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/middleware"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

// parseIDParam parses a positive ID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	idStr := ctx.Param(paramName)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("Invalid %s", paramName))
	}
	return id, nil
}

// pathID parses paramName and writes the error response when it is invalid
func pathID(ctx *gin.Context, paramName string) (int64, bool) {
	id, err := parseIDParam(ctx, paramName)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// currentUserID returns the authenticated user or writes a 401
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

// optionalUserID returns the caller's ID, or 0 for anonymous requests
func optionalUserID(ctx *gin.Context) int64 {
	userID, _ := middleware.GetUserID(ctx)
	return userID
}

// bindJSON binds the request body and writes a validation error response on failure
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
