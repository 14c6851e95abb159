package validators

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// ValidateEmail checks that value is a well-formed email address.
func ValidateEmail(fieldName, value string) *ValidationResult {
	userFriendlyName := ToUserFriendlyName(fieldName)

	if len(value) == 0 {
		return NewValidationResult(false, fieldName,
			WithValue(value),
			WithMessage(fmt.Sprintf("%s is required.", userFriendlyName)),
			WithSuggestedAction("Please provide a valid email address, e.g., 'name@example.com'."),
			WithCode(CodeRequired),
		)
	}

	if !govalidator.IsEmail(value) {
		return NewValidationResult(false, fieldName,
			WithValue(value),
			WithMessage(fmt.Sprintf("Please enter a valid %s.", userFriendlyName)),
			WithSuggestedAction("Please provide a valid email address, e.g., 'name@example.com'."),
			WithCode(CodeInvalid),
		)
	}

	return NewValidationResult(true, fieldName,
		WithValue(value),
		WithCode(CodeSuccess),
	)
}
