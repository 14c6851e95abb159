package validators

import (
	"fmt"
	"strings"

	"github.com/plaenen/commandkit/pkg/password"
)

// ValidatePassword checks that value is present and strong enough. The
// displayed value is always fully masked.
func ValidatePassword(fieldName, value string) *ValidationResult {
	userFriendlyName := ToUserFriendlyName(fieldName)

	if len(value) == 0 {
		return NewValidationResult(false, fieldName,
			WithValue(MaskPassword(value)),
			WithMessage(fmt.Sprintf("%s is required.", userFriendlyName)),
			WithSuggestedAction(fmt.Sprintf("Please provide a valid %s.", strings.ToLower(userFriendlyName))),
			WithCode(CodeRequired),
		)
	}

	if err := password.ValidateStrength(value); err != nil {
		return NewValidationResult(false, fieldName,
			WithValue(MaskPassword(value)),
			WithMessage(fmt.Sprintf("%s is too weak.", userFriendlyName)),
			WithSuggestedAction("Use a longer password with a mix of cases, digits and symbols."),
			WithCode(CodeInvalid),
			WithMetadata("reason", err.Error()),
		)
	}

	return NewValidationResult(true, fieldName,
		WithValue(MaskPassword(value)),
		WithCode(CodeSuccess),
	)
}
