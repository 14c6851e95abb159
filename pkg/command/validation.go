package command

import (
	"github.com/plaenen/commandkit/pkg/schema"
	"github.com/plaenen/commandkit/pkg/validators"
)

// errorFromField converts a schema casting failure into an input error on
// the same path.
func errorFromField(fe *schema.FieldError) *Error {
	opts := make([]ErrorOption, 0, len(fe.Context))
	for k, v := range fe.Context {
		opts = append(opts, WithContext(k, v))
	}
	return NewInputError(fe.Path, fe.Symbol, fe.Message, opts...)
}

// AddValidation records a validator result against the run when it is
// invalid, mapping the result code onto the matching error symbol. Valid
// results are ignored, so loaders and validators can pass every result
// through unconditionally.
func AddValidation[I any](r *Run[I], res *validators.ValidationResult) error {
	if res == nil || res.IsValid {
		return nil
	}
	symbol := schema.SymbolInvalidAttribute
	if res.Code == validators.CodeRequired {
		symbol = schema.SymbolMissingRequiredAttribute
	}
	opts := []ErrorOption{}
	if res.Value != "" {
		opts = append(opts, WithContext("value", res.Value))
	}
	if res.SuggestedAction != "" {
		opts = append(opts, WithContext("suggested_action", res.SuggestedAction))
	}
	for k, v := range res.Metadata {
		opts = append(opts, WithContext(k, v))
	}
	return r.AddInputError([]string{res.FieldName}, symbol, res.Message, opts...)
}

// AddValidations records every invalid result in the set.
func AddValidations[I any](r *Run[I], results validators.Results) error {
	var err error
	for _, res := range results {
		if e := AddValidation(r, res); e != nil {
			err = e
		}
	}
	return err
}
