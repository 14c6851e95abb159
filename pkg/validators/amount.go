package validators

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidatePositiveAmount checks that a monetary amount is strictly positive
// and has at most maxScale decimal places.
func ValidatePositiveAmount(fieldName string, amount decimal.Decimal, maxScale int32) *ValidationResult {
	userFriendlyName := ToUserFriendlyName(fieldName)

	if !amount.IsPositive() {
		return NewValidationResult(false, fieldName,
			WithValue(amount.String()),
			WithMessage(fmt.Sprintf("%s must be greater than zero.", userFriendlyName)),
			WithSuggestedAction(fmt.Sprintf("Please provide a positive %s.", strings.ToLower(userFriendlyName))),
			WithCode(CodeInvalid),
		)
	}

	if amount.Exponent() < -maxScale {
		return NewValidationResult(false, fieldName,
			WithValue(amount.String()),
			WithMessage(fmt.Sprintf("%s must have at most %d decimal places.", userFriendlyName, maxScale)),
			WithSuggestedAction(fmt.Sprintf("Please round the %s to %d decimal places.", strings.ToLower(userFriendlyName), maxScale)),
			WithCode(CodeInvalid),
		)
	}

	return NewValidationResult(true, fieldName,
		WithValue(amount.String()),
		WithCode(CodeSuccess),
	)
}
