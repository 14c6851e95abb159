package command_test

import (
	"context"
	"testing"

	"github.com/plaenen/commandkit/pkg/command"
	"github.com/plaenen/commandkit/pkg/schema"
	"github.com/plaenen/commandkit/pkg/validators"
)

func TestAddValidationMapsResults(t *testing.T) {
	def := command.NewDefinition("Validated", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return 0, nil
	}).UseRecordValidator(func(ctx context.Context, r *command.Run[addInputs]) error {
		results := validators.Results{
			validators.ValidateRequiredString("nickname", ""),
			validators.NewValidationResult(true, "a"),
		}
		return command.AddValidations(r, results)
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !outcome.IsFailure() {
		t.Fatal("expected failure outcome")
	}

	errs := outcome.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1 (valid results must be ignored): %v", len(errs), errs)
	}
	e := errs[0]
	if e.Symbol != schema.SymbolMissingRequiredAttribute {
		t.Errorf("symbol = %q, want %q", e.Symbol, schema.SymbolMissingRequiredAttribute)
	}
	if len(e.Path) != 1 || e.Path[0] != "nickname" {
		t.Errorf("path = %v, want [nickname]", e.Path)
	}
	if e.Category != command.CategoryData {
		t.Errorf("category = %q", e.Category)
	}
}

func TestAddValidationInvalidCode(t *testing.T) {
	def := command.NewDefinition("Validated", func(ctx context.Context, r *command.Run[addInputs]) (int, error) {
		return 0, nil
	}).UseRecordValidator(func(ctx context.Context, r *command.Run[addInputs]) error {
		return command.AddValidation(r, validators.ValidateEmail("email", "nope"))
	})

	outcome, err := def.Run(context.Background(), command.Attributes{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	errs := outcome.Errors()
	if len(errs) != 1 || errs[0].Symbol != schema.SymbolInvalidAttribute {
		t.Fatalf("errors = %v, want one invalid_attribute", errs)
	}
	if errs[0].Context["suggested_action"] == nil {
		t.Error("suggested action not carried into error context")
	}
}
