package http

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Errors raised by Huma itself, such as an unparseable body, use the same
// body shape as domain errors and are reported as 400.
func init() {
	huma.NewError = newHumaError
}

// NewAPI mounts a Huma API on router.
func NewAPI(router chi.Router, version string) huma.API {
	return humachi.New(router, huma.DefaultConfig(ServiceName, version))
}

func newHumaError(status int, msg string, errs ...error) huma.StatusError {
	e := &APIError{Status: status, Message: msg, Details: msg}
	if status == http.StatusUnprocessableEntity {
		e.Status = http.StatusBadRequest
	}
	if e.Status == http.StatusBadRequest {
		e.ErrorType = domain.ErrorTypeValidation
	}
	if len(errs) > 0 {
		parts := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				parts = append(parts, err.Error())
			}
		}
		e.Details = msg + ": " + strings.Join(parts, "; ")
	}
	return e
}
