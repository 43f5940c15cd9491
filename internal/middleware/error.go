package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/logger"
)

const (
	codeHTTP      = "HTTP_ERROR"
	codeCancelled = "CANCELLED"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler is the centralized fiber error handler
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(zap.String("path", c.Path()))

		var domainErr *domain.DomainError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &domainErr):
			status := StatusForCode(domainErr.Code)
			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", status),
				zap.Error(domainErr.Err),
			}
			if status >= http.StatusInternalServerError {
				log.Error("Domain error occurred", fields...)
			} else {
				log.Warn("Domain error occurred", fields...)
			}
			return writeError(c, status, string(domainErr.Code), domainErr.Message, domainErr.Context)

		case errors.As(err, &fiberErr):
			log.Warn("Fiber error occurred", zap.Int("status", fiberErr.Code), zap.String("message", fiberErr.Message))
			return writeError(c, fiberErr.Code, codeHTTP, fiberErr.Message, nil)

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// The server is shutting down or the run outlived its deadline.
			log.Warn("Request cancelled", zap.Error(err))
			return writeError(c, http.StatusServiceUnavailable, codeCancelled, err.Error(), nil)
		}

		log.Error("Unknown error occurred", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, string(domain.ErrInternal), "Internal server error", nil)
	}
}

func writeError(c *fiber.Ctx, status int, code, message string, details map[string]interface{}) error {
	resp := ErrorResponse{Code: code, Message: message, Status: status}
	if len(details) > 0 {
		resp.Details = details
	}
	return c.Status(status).JSON(resp)
}

// StatusForCode maps domain error codes to HTTP status codes
func StatusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrNotFound, domain.ErrUnknownProfile:
		return http.StatusNotFound
	case domain.ErrInvalidInput, domain.ErrSchema, domain.ErrNoEligibleRecords, domain.ErrIneligibleRecord:
		return http.StatusBadRequest
	case domain.ErrEmptyResult, domain.ErrParse:
		return http.StatusUnprocessableEntity
	case domain.ErrLLMServiceError, domain.ErrMissingCredential:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
