package validator

import (
	"fmt"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("claim_status", validateClaimStatus)

	return validator
}

func validateClaimStatus(fl validator.FieldLevel) bool {
	status := domain.ClaimStatus(fl.Field().String())

	return status == domain.ClaimActive || status == domain.ClaimReserved
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "claim_status":
		return "must be either ACTIVE or RESERVED"
	default:
		return "is invalid"
	}
}
