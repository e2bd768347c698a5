// Package errors provides custom error types for the storefront API.
// All service-layer and middleware errors should use AppError to ensure
// consistent, secure error responses that never leak internal details to clients.
package errors

import (
	"net/http"
	"strings"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Internal   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// wrapped copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Details:    sentinel.Details,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Details:    sentinel.Details,
		Internal:   sentinel.Internal,
	}
}

// Forbidden builds the authorization error returned by the role gate. The
// message names the allowed role set; details carry it in machine-readable form.
func Forbidden(required []string, actual string) *AppError {
	msg := ErrForbidden.Message
	if len(required) > 0 {
		msg = "Access denied. Requires one of the following roles: " + strings.Join(required, ", ")
	}
	return &AppError{
		Code:       ErrForbidden.Code,
		Message:    msg,
		StatusCode: ErrForbidden.StatusCode,
		Details: map[string]any{
			"required": required,
			"actual":   actual,
		},
	}
}

// Authentication errors. Every one of these is terminal for the request (401).
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrMissingToken       = &AppError{Code: "TOKEN_MISSING", Message: "No token provided in request", StatusCode: http.StatusUnauthorized}
	ErrMalformedToken     = &AppError{Code: "TOKEN_MALFORMED", Message: "Invalid authorization header format", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "TOKEN_INVALID", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrTokenExpired       = &AppError{Code: "TOKEN_EXPIRED", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrAccountSuspended   = &AppError{Code: "ACCOUNT_SUSPENDED", Message: "Account is suspended", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// Operator endpoint errors.
var (
	ErrAPIKeyNotConfigured = &AppError{Code: "API_KEY_NOT_CONFIGURED", Message: "This endpoint is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidAPIKey       = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// Authorization errors (403).
var (
	ErrForbidden  = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrSelfDelete = &AppError{Code: "SELF_DELETE_FORBIDDEN", Message: "You cannot delete your own account", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrInvalidRole    = &AppError{Code: "INVALID_ROLE", Message: "Unknown role", StatusCode: http.StatusBadRequest}
)

// Audit errors.
var (
	ErrInvalidAuditAction = &AppError{Code: "INVALID_ACTION", Message: "Unknown audit action", StatusCode: http.StatusBadRequest}
	ErrMissingActor       = &AppError{Code: "INVALID_INPUT", Message: "Audit entry requires an actor", StatusCode: http.StatusBadRequest}
	ErrDuplicateTarget    = &AppError{Code: "INVALID_INPUT", Message: "Audit entry has more than one target of the same kind", StatusCode: http.StatusBadRequest}
	ErrAuditWriteFailed   = &AppError{Code: "AUDIT_WRITE_FAILED", Message: "Failed to record audit entry", StatusCode: http.StatusInternalServerError}
)

// Order errors.
var (
	ErrOrderNotFound         = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrOrderAlreadyPaid      = &AppError{Code: "ORDER_ALREADY_PAID", Message: "Order is already marked as paid", StatusCode: http.StatusBadRequest}
	ErrOrderAlreadyDelivered = &AppError{Code: "ORDER_ALREADY_DELIVERED", Message: "Order is already marked as delivered", StatusCode: http.StatusBadRequest}
)

// Catalog errors.
var (
	ErrProductNotFound   = &AppError{Code: "PRODUCT_NOT_FOUND", Message: "Product not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "Category already exists", StatusCode: http.StatusConflict}
)
