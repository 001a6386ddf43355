package handler

import (
	"errors"
	"net/http"

	"thundergames/backend/internal/logger"
	"thundergames/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// OKResponse acknowledges a mutation that returns no body.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", logger.RequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	abortJSON(c, status, msg)
}

func statusFor(err error) (int, string) {
	var validationErr *service.ValidationError
	var notFoundErr *service.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid credentials"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
