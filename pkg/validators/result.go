// Package validators provides field-level validation helpers for command
// execute bodies and record validators. Each helper returns a
// ValidationResult carrying a user-presentable message and a suggested
// action; failed results convert into structured run errors.
package validators

import "fmt"

// Code classifies a validation result.
type Code string

const (
	CodeUnspecified Code = "unspecified"
	CodeSuccess     Code = "success"
	CodeRequired    Code = "required"
	CodeInvalid     Code = "invalid"
)

// Option customizes a ValidationResult.
type Option func(*ValidationResult)

// ValidationResult is the outcome of validating a single field value.
type ValidationResult struct {
	IsValid         bool           `json:"is_valid"`
	FieldName       string         `json:"field_name"`
	Value           string         `json:"value"`
	Message         string         `json:"message"`
	SuggestedAction string         `json:"suggested_action"`
	Code            Code           `json:"code"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// WithValue sets the value shown in messages and metadata.
func WithValue(value string) Option {
	return func(vr *ValidationResult) {
		vr.Value = value
	}
}

// WithMaskedValue sets the displayed value to its masked form. Use for
// sensitive fields.
func WithMaskedValue(value string) Option {
	return func(vr *ValidationResult) {
		vr.Value = MaskString(value)
	}
}

// WithMessage sets the user-facing message.
func WithMessage(message string) Option {
	return func(vr *ValidationResult) {
		vr.Message = message
	}
}

// WithSuggestedAction sets the remediation hint.
func WithSuggestedAction(action string) Option {
	return func(vr *ValidationResult) {
		vr.SuggestedAction = action
	}
}

// WithCode sets the validation code.
func WithCode(code Code) Option {
	return func(vr *ValidationResult) {
		vr.Code = code
	}
}

// WithMetadata adds one metadata entry.
func WithMetadata(key string, value any) Option {
	return func(vr *ValidationResult) {
		if vr.Metadata == nil {
			vr.Metadata = make(map[string]any)
		}
		vr.Metadata[key] = value
	}
}

// NewValidationResult creates a result for fieldName and applies options.
func NewValidationResult(isValid bool, fieldName string, options ...Option) *ValidationResult {
	vr := &ValidationResult{
		IsValid:   isValid,
		FieldName: fieldName,
		Code:      CodeUnspecified,
	}
	for _, option := range options {
		option(vr)
	}
	return vr
}

// Results collects validation results across fields.
type Results []*ValidationResult

// HasErrors reports whether any result is invalid.
func (rs Results) HasErrors() bool {
	for _, r := range rs {
		if !r.IsValid {
			return true
		}
	}
	return false
}

// Invalid returns only the failed results, in order.
func (rs Results) Invalid() Results {
	var out Results
	for _, r := range rs {
		if !r.IsValid {
			out = append(out, r)
		}
	}
	return out
}

// Describe renders a short human-readable summary, mainly for logs.
func (vr *ValidationResult) Describe() string {
	if vr.IsValid {
		return fmt.Sprintf("%s: ok", vr.FieldName)
	}
	return fmt.Sprintf("%s: %s (%s)", vr.FieldName, vr.Message, vr.Code)
}
