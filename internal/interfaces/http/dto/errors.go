package dto

import (
	"net/http"

	"github.com/clubhub/backend/internal/domain/shared"
)

// Error codes that only exist at the transport level. Every other error code
// comes from the domain.
const (
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "request-too-large"
	// ErrCodeRouteNotFound is used for unknown routes
	ErrCodeRouteNotFound = "route-not-found"
	// ErrCodeMethodNotAllowed is used when the route exists for other methods
	ErrCodeMethodNotAllowed = "method-not-allowed"
)

// errorCodeToHTTPStatus maps error codes to HTTP status codes
var errorCodeToHTTPStatus = map[string]int{
	shared.CodeUnauthenticated:    http.StatusUnauthorized,
	shared.CodePermissionDenied:   http.StatusForbidden,
	shared.CodeInvalidArgument:    http.StatusBadRequest,
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodeAlreadyExists:      http.StatusConflict,
	shared.CodeFailedPrecondition: http.StatusPreconditionFailed,
	shared.CodeInternal:           http.StatusInternalServerError,

	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:    http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx status
func IsClientError(code string) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}
