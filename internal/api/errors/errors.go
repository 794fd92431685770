package errors

import (
	stderrors "errors"
	"net/http"

	apperrors "media2text/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Message   string            `json:"error"`
	Kind      ErrorKind         `json:"kind"`
	Cause     string            `json:"cause,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Kind:    KindUnauthorized,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// FromPipeline converts a pipeline failure into the response error. Only the
// stage message reaches the caller; the wrapped cause stays in the logs.
func FromPipeline(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	kind := apperrors.KindOf(err)
	out := &APIError{
		Message: apperrors.PublicMessage(err),
		Cause:   string(kind),
	}
	switch apperrors.HTTPStatus(kind) {
	case http.StatusBadRequest:
		out.Kind = KindBadRequest
	case http.StatusUnauthorized:
		out.Kind = KindUnauthorized
	default:
		out.Kind = KindInternal
	}
	return out
}
