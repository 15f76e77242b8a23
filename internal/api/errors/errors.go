package errors

import (
	"errors"
	"net/http"

	"github.com/shaobohan917/douyin-toolbox/internal/app/douyin"
	"github.com/shaobohan917/douyin-toolbox/internal/app/stt"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindBadRequest         ErrorKind = "bad_request"
	KindTooManyRequests    ErrorKind = "too_many_requests"
	KindUpstream           ErrorKind = "upstream"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

// APIError represents a structured API error
type APIError struct {
	Kind      ErrorKind
	Message   string
	Details   map[string]string
	RequestID string
	Code      string
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
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		// Scrape and STT failures surface as plain 500s with the specific
		// message in the envelope.
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

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Kind:    KindTooManyRequests,
		Message: message,
	}
}

// Translate maps domain errors from the scrape and transcription pipelines to
// API errors. An invalid share URL is the caller's fault; everything else is
// an upstream failure reported with its specific message.
func Translate(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var scrapeErr *douyin.ScrapeError
	if errors.As(err, &scrapeErr) {
		if scrapeErr.Code == douyin.CodeInvalidURL {
			return &APIError{Kind: KindBadRequest, Message: scrapeErr.Message, Code: scrapeErr.Code}
		}
		return &APIError{Kind: KindUpstream, Message: scrapeErr.Message, Code: scrapeErr.Code}
	}

	var sttErr *stt.Error
	if errors.As(err, &sttErr) {
		return &APIError{Kind: KindUpstream, Message: sttErr.Message, Code: sttErr.Code}
	}

	return &APIError{Kind: KindInternal, Message: err.Error()}
}
