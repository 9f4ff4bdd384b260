package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: status,
		ErrorCode:  code,
		Message:    message,
		Details:    details,
	}
}

// fromError maps pipeline errors onto HTTP responses.
func fromError(err error) *APIError {
	switch {
	case errors.Is(err, services.ErrInvalidPersona):
		return newAPIError(http.StatusBadRequest, "INVALID_PERSONA", "Unknown persona", err.Error())
	case errors.Is(err, services.ErrInvalidFilter):
		return newAPIError(http.StatusBadRequest, "INVALID_FILTER", "Invalid filter selection", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return newAPIError(http.StatusServiceUnavailable, "DATASET_NOT_FOUND", "Listings dataset not found", err.Error())
	case errors.Is(err, storage.ErrMissingColumn):
		return newAPIError(http.StatusServiceUnavailable, "DATASET_INVALID", "Listings dataset is missing required columns", err.Error())
	case errors.Is(err, services.ErrEmptyDataset):
		return newAPIError(http.StatusServiceUnavailable, "EMPTY_DATASET", "No listings survived cleaning", nil)
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
	}
}

func invalidParameter(name string, err error) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value", map[string]string{
		"parameter": name,
		"error":     err.Error(),
	})
}
