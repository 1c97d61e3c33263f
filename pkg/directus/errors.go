package directus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Directus error codes, as sent in errors[].extensions.code.
const (
	ErrorCodeForbidden          = "FORBIDDEN"
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrorCodeInvalidToken       = "INVALID_TOKEN"
	ErrorCodeRouteNotFound      = "ROUTE_NOT_FOUND"
	ErrorCodeInvalidQuery       = "INVALID_QUERY"
	ErrorCodeRequestsExceeded   = "REQUESTS_EXCEEDED"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal           = "INTERNAL_SERVER_ERROR"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrEndpointRequired    = errors.New("endpoint URL is required")
	ErrInvalidEndpoint     = errors.New("endpoint must be an absolute http(s) URL")
	ErrCollectionFailed    = errors.New("collection failed")
	ErrNoMoreItems         = errors.New("no more items")
	ErrInvalidPageSize     = errors.New("page size must be positive")
	ErrPaginationClientNil = errors.New("pagination client is required")
)

// ErrorExtensions carries the machine readable part of a Directus error.
type ErrorExtensions struct {
	Code   string `json:"code"             yaml:"code"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// APIError represents one entry of a Directus error response.
type APIError struct {
	Message    string          `json:"message"    yaml:"message"`
	Extensions ErrorExtensions `json:"extensions" yaml:"extensions"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Extensions.Code == "" {
		return e.Message
	}

	return fmt.Sprintf("%s (code: %s)", e.Message, e.Extensions.Code)
}

// ResponseError represents a non-2xx response from the API.
type ResponseError struct {
	StatusCode int        `json:"-"`
	Errors     []APIError `json:"errors"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("multiple errors: %v", e.Errors)
	}
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// ParseResponseError builds a ResponseError from a response status and body.
// Bodies that are not a Directus error envelope still produce an error
// carrying the status code.
func ParseResponseError(statusCode int, data []byte) *ResponseError {
	errResp := &ResponseError{}

	if len(data) > 0 {
		_ = json.Unmarshal(data, errResp)
	}

	errResp.StatusCode = statusCode

	return errResp
}

func matches(err error, status int, codes ...string) bool {
	errResp := &ResponseError{}
	if errors.As(err, &errResp) {
		if errResp.StatusCode == status {
			return true
		}

		if first := errResp.FirstError(); first != nil {
			return slices.Contains(codes, first.Extensions.Code)
		}

		return false
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return slices.Contains(codes, apiErr.Extensions.Code)
	}

	return false
}

// IsForbidden checks if the error is a permission error.
func IsForbidden(err error) bool {
	return matches(err, http.StatusForbidden, ErrorCodeForbidden)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return matches(err, http.StatusUnauthorized, ErrorCodeInvalidCredentials, ErrorCodeTokenExpired, ErrorCodeInvalidToken)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return matches(err, http.StatusNotFound, ErrorCodeRouteNotFound)
}
