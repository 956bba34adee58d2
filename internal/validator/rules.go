package validator

import (
	"fmt"
	"strings"

	"auction_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules adds the domain tags to v.
func registerCustomRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"is-user-role":       validateUserRole,
		"is-property-status": validatePropertyStatus,
		"is-link-status":     validateLinkStatus,
		"not-blank":          validateNotBlank,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register custom validation tag '%s': %w", tag, err)
		}
	}
	return nil
}

// Empty values pass; 'required' covers them.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).Valid()
}

func validatePropertyStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.PropertyStatus(value).Valid()
}

func validateLinkStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.LinkStatus(value).Valid()
}

// validateNotBlank rejects strings that are empty after trimming.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
