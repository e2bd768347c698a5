package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "storefront/internal/errors"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/uuid"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is returned by endpoints with nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// getPrincipal returns the authenticated user loaded by AuthMiddleware.
// Returns ErrUnauthorized if not present.
func getPrincipal(c *gin.Context) (*models.User, error) {
	user, ok := middleware.GetPrincipal(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// parsePathID reads a UUID path parameter in canonical lowercase form, so it
// compares equal to stored ids. Returns ErrInvalidInput if it is not a UUID.
//
//nolint:unparam // every route names its id parameter "id" today
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// requestMeta captures the request details an audit entry is enriched with.
func requestMeta(c *gin.Context) *services.RequestMeta {
	meta := &services.RequestMeta{
		ForwardedFor: c.GetHeader("X-Forwarded-For"),
		RemoteAddr:   c.Request.RemoteAddr,
		UserAgent:    c.GetHeader("User-Agent"),
		Location:     c.GetHeader("X-Geo-Location"),
	}
	if user, ok := middleware.GetPrincipal(c); ok {
		meta.ActorRole = user.Role
	}
	return meta
}

// bindError converts a binding failure into an AppError. Failures of the
// custom role and action validators keep their dedicated codes.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "audit_action":
				return apperrors.ErrInvalidAuditAction
			case "user_role":
				return apperrors.ErrInvalidRole
			}
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// parseDateParam accepts RFC 3339 timestamps or YYYY-MM-DD dates. With
// endOfDay set, a bare date covers the whole day.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Invalid date "+raw+", expected YYYY-MM-DD or RFC 3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and details.
// Otherwise it logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{"error": appErr})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{"error": apperrors.ErrInternalServer})
}
