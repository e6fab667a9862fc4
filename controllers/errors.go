package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/services"
)

// ServiceError is an error with the HTTP status it should be reported as.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// toServiceError maps the service and provider error vocabulary onto HTTP.
func toServiceError(err error) *ServiceError {
	var (
		se *ServiceError
		ve *services.ValidationError
		re *providers.RemoteError
		te *providers.TransportError
	)
	switch {
	case errors.As(err, &se):
		return se
	case errors.As(err, &ve):
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: ve.Error()}
	case errors.Is(err, services.ErrEmptyTrackingID),
		errors.Is(err, services.ErrConfirmationRequired):
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		return &ServiceError{StatusCode: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, providers.ErrTrackingNotFound):
		return &ServiceError{StatusCode: http.StatusNotFound, Message: err.Error()}
	case errors.As(err, &re):
		status := re.StatusCode
		if status >= 500 || status < 400 {
			status = http.StatusBadGateway
		}
		return &ServiceError{StatusCode: status, Message: re.Message}
	case errors.As(err, &te):
		return &ServiceError{StatusCode: http.StatusBadGateway, Message: "tracking service unavailable"}
	case errors.Is(err, services.ErrCreatedNotFound):
		return &ServiceError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &ServiceError{StatusCode: http.StatusGatewayTimeout, Message: "request timed out"}
	default:
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "internal server error"}
	}
}

func respondError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	se := toServiceError(err)
	body := gin.H{"error": se.Message}
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	ctx.JSON(se.StatusCode, body)
}
