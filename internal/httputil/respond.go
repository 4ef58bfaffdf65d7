// Package httputil contains shared JSON request/response helpers.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/openshelf/catalog/internal/errors"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a ServiceError onto the wire. Non-service errors
// are reported as a generic internal failure; the caller is responsible for
// logging the underlying cause.
func WriteServiceError(w http.ResponseWriter, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = errors.Internal("", err)
	}

	body := ErrorBody{Error: svcErr.Message, Code: string(svcErr.Code)}
	if svcErr.Code == errors.CodeValidationFailed {
		body.Details = svcErr.Details
	}
	WriteJSON(w, svcErr.HTTPStatus, body)
}

// WriteErrorResponse writes an explicit error without a ServiceError value.
func WriteErrorResponse(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, Details: details})
}
