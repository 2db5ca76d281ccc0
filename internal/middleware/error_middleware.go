package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/logger"
)

type errorMapping struct {
	status  int
	code    dto.ErrorCode
	message string
}

// errorStatus resolves the HTTP status, error code and default message for err
func errorStatus(err error) errorMapping {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrCourseNotFound, apperrors.ErrTopicNotFound, apperrors.ErrUserNotFound,
		apperrors.ErrHouseNotFound, apperrors.ErrRentalNotFound):
		return errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"}

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"}
	case apperrors.Is(err, apperrors.ErrAlreadyEnrolled, apperrors.ErrResourceAlreadyExists):
		return errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"}
	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrHouseRented):
		return errorMapping{http.StatusConflict, dto.ErrorCodeConflict, "Conflict"}

	case apperrors.Is(err, apperrors.ErrPermissionDenied,
		apperrors.ErrNotEnrolled, apperrors.ErrRentalNotCompleted,
		apperrors.ErrNotCourseOwner, apperrors.ErrNotHouseOwner):
		return errorMapping{http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"}

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"}
	case errors.Is(err, apperrors.ErrTokenExpired):
		return errorMapping{http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"}
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return errorMapping{http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"}
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked):
		return errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return errorMapping{http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"}

	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrInvalidRating, apperrors.ErrInvalidSyllabus):
		return errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"}
	case apperrors.Is(err, apperrors.ErrBadRequest,
		apperrors.ErrHouseNotAvailable, apperrors.ErrNoActiveRental, apperrors.ErrOwnHouseRental):
		return errorMapping{http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"}

	default:
		return errorMapping{http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"}
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	mapping := errorStatus(err)

	if mapping.status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error in request")
		c.JSON(mapping.status, dto.NewErrorResponse(dto.NewErrorDetail(mapping.code, mapping.message)))
		return
	}

	// Sentinel and custom errors carry a message meant for the client
	message := err.Error()
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		message = customErr.Message
	}
	if message == "" {
		message = mapping.message
	}

	detail := dto.NewErrorDetail(mapping.code, message)
	if customErr != nil && customErr.Details != nil {
		detail = detail.WithDetails(customErr.Details)
	}

	c.JSON(mapping.status, dto.NewErrorResponse(detail))
}
