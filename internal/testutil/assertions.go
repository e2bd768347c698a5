package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AuditEntries returns every stored audit entry, oldest first.
func AuditEntries(t *testing.T, db *gorm.DB) []models.AuditLog {
	t.Helper()

	var entries []models.AuditLog
	if err := db.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to read audit entries: %v", err)
	}
	return entries
}

// AssertAuditCount fails the test unless exactly want audit entries are stored.
func AssertAuditCount(t *testing.T, db *gorm.DB, want int) {
	t.Helper()

	if got := len(AuditEntries(t, db)); got != want {
		t.Errorf("expected %d audit entries, got %d", want, got)
	}
}
