package validators

import (
	"fmt"
	"strings"
)

// ToUserFriendlyName converts snake_case field names to user-friendly names.
// Examples: "first_name" -> "First name", "email_address" -> "Email address".
func ToUserFriendlyName(fieldName string) string {
	if fieldName == "" {
		return fieldName
	}

	parts := strings.Split(fieldName, "_")
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		if i == 0 {
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		} else {
			parts[i] = strings.ToLower(part)
		}
	}

	return strings.Join(parts, " ")
}

// ValidateRequiredString checks that value is non-empty.
func ValidateRequiredString(fieldName, value string) *ValidationResult {
	userFriendlyName := ToUserFriendlyName(fieldName)

	if len(value) == 0 {
		return NewValidationResult(false, fieldName,
			WithValue(value),
			WithMessage(fmt.Sprintf("%s is required.", userFriendlyName)),
			WithSuggestedAction(fmt.Sprintf("Please provide a valid %s.", strings.ToLower(userFriendlyName))),
			WithCode(CodeRequired),
		)
	}
	return NewValidationResult(true, fieldName,
		WithValue(value),
		WithCode(CodeSuccess),
	)
}

// ValidateStringLength checks that value is between minLength and maxLength
// bytes long, inclusive.
func ValidateStringLength(fieldName, value string, minLength, maxLength int) *ValidationResult {
	userFriendlyName := ToUserFriendlyName(fieldName)

	if len(value) < minLength {
		return NewValidationResult(false, fieldName,
			WithValue(value),
			WithMessage(fmt.Sprintf("%s must be at least %d characters long.", userFriendlyName, minLength)),
			WithSuggestedAction(fmt.Sprintf("Please provide a %s with at least %d characters.", strings.ToLower(userFriendlyName), minLength)),
			WithCode(CodeInvalid),
		)
	}

	if len(value) > maxLength {
		return NewValidationResult(false, fieldName,
			WithValue(value),
			WithMessage(fmt.Sprintf("%s must be no more than %d characters long.", userFriendlyName, maxLength)),
			WithSuggestedAction(fmt.Sprintf("Please provide a %s with no more than %d characters.", strings.ToLower(userFriendlyName), maxLength)),
			WithCode(CodeInvalid),
		)
	}

	return NewValidationResult(true, fieldName,
		WithValue(value),
		WithCode(CodeSuccess),
	)
}
