// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"storefront/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("user_role", validateUserRole)
	_ = v.RegisterValidation("audit_action", validateAuditAction)
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validateAuditAction(fl validator.FieldLevel) bool {
	return models.AuditAction(fl.Field().String()).Valid()
}
