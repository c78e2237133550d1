package http

import (
	"errors"
	"net/http"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// APIError is the error body of every failed request. ErrorType is empty
// for errors that carry no machine-readable classification.
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"error" doc:"Short error message"`
	Details   string `json:"details" doc:"Human-readable guidance to show the business owner"`
	ErrorType string `json:"errorType,omitempty" doc:"Machine-readable error type"`
}

func (e *APIError) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.Status }

// toAPIError translates domain errors to API errors.
func toAPIError(err error) error {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return &APIError{
			Status:  http.StatusNotFound,
			Message: "tenant not found",
			Details: "No business matches this id.",
		}
	}

	var ce domain.ClassifiedError
	if errors.As(err, &ce) {
		return &APIError{
			Status:    statusFor(ce.ErrorType()),
			Message:   ce.Error(),
			Details:   ce.Details(),
			ErrorType: ce.ErrorType(),
		}
	}

	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Details: "Something went wrong on our side. Please try again in a few minutes.",
	}
}

func statusFor(errorType string) int {
	switch errorType {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeDuplicateEmail, domain.ErrorTypeDuplicateSlug:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
