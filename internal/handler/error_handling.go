package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
	"storycraft-server/internal/taskmanager"
)

// handleServiceError maps service errors to HTTP responses. Unrecognized
// errors become opaque 500s so internals never leak to clients.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	var status int
	var body models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
		body = models.ErrorResponse{Code: models.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
		body = models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		body = models.ErrorResponse{Code: models.ErrCodeForbidden, Message: "access denied"}
	case errors.Is(err, models.ErrPageNotFound),
		errors.Is(err, models.ErrProjectNotFound),
		errors.Is(err, models.ErrTaskNotFound):
		status = http.StatusNotFound
		body = models.ErrorResponse{Code: models.ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, models.ErrProjectAlreadyExists):
		status = http.StatusConflict
		body = models.ErrorResponse{Code: models.ErrCodeConflict, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
		body = models.ErrorResponse{Code: models.ErrCodeConflict, Message: err.Error()}
	case errors.Is(err, models.ErrAssetNotFound):
		status = http.StatusConflict
		body = models.ErrorResponse{Code: models.ErrCodeAssetMissing, Message: err.Error()}
	case errors.Is(err, models.ErrRenameInconsistency):
		status = http.StatusInternalServerError
		body = models.ErrorResponse{Code: models.ErrCodeInconsistency, Message: err.Error()}
	case errors.Is(err, models.ErrGenerationTimeout):
		status = http.StatusGatewayTimeout
		body = models.ErrorResponse{Code: models.ErrCodeGeneration, Message: "generation timed out"}
	case errors.Is(err, models.ErrGenerationFailed):
		status = http.StatusBadGateway
		body = models.ErrorResponse{Code: models.ErrCodeGeneration, Message: "generation failed"}
	case errors.Is(err, models.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		body = models.ErrorResponse{Code: models.ErrCodeStoreDown, Message: "document store unavailable"}
	case errors.Is(err, taskmanager.ErrTooManyTasks):
		status = http.StatusTooManyRequests
		body = models.ErrorResponse{Code: models.ErrCodeConflict, Message: err.Error()}
	default:
		status = http.StatusInternalServerError
		body = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "internal server error"}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    models.ErrCodeBadRequest,
		Message: message,
	})
}
