// Package dto provides data transfer objects for external error HTTP responses.
package dto

import (
	"encoding/json"
	"time"

	externalErrorDomain "github.com/allisson/concierge/internal/externalerror/domain"
)

// ExternalErrorResponse represents an external error in API responses.
type ExternalErrorResponse struct {
	ID         string          `json:"id"`
	Operation  string          `json:"operation"`
	Supplier   string          `json:"supplier"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Context    json.RawMessage `json:"context,omitempty"`
	HappenedAt time.Time       `json:"happened_at"`
}

// ListExternalErrorsResponse represents a page of external errors.
type ListExternalErrorsResponse struct {
	Data []ExternalErrorResponse `json:"data"`
}

// MapExternalErrorToResponse converts a domain external error to an API response.
// A context that is not valid JSON is returned as a JSON string.
func MapExternalErrorToResponse(e *externalErrorDomain.ExternalError) ExternalErrorResponse {
	response := ExternalErrorResponse{
		ID:         e.ID.String(),
		Operation:  e.Operation,
		Supplier:   e.Supplier,
		Code:       e.Code,
		Message:    e.Message,
		HappenedAt: e.HappenedAt,
	}
	switch {
	case e.Context == "":
	case json.Valid([]byte(e.Context)):
		response.Context = json.RawMessage(e.Context)
	default:
		quoted, _ := json.Marshal(e.Context)
		response.Context = quoted
	}
	return response
}

// MapExternalErrorsToListResponse converts domain external errors to a list response.
func MapExternalErrorsToListResponse(externalErrors []*externalErrorDomain.ExternalError) ListExternalErrorsResponse {
	data := make([]ExternalErrorResponse, 0, len(externalErrors))
	for _, e := range externalErrors {
		data = append(data, MapExternalErrorToResponse(e))
	}
	return ListExternalErrorsResponse{Data: data}
}
