package middleware

import (
	"context"
	"fmt"

	"github.com/plaenen/commandkit/pkg/command"
)

// SymbolUnauthorized marks runs rejected by an Authorizer.
const SymbolUnauthorized = "unauthorized"

// Authorizer decides whether a principal may run a command.
type Authorizer interface {
	// Authorize returns a non-nil error when principalID may not run
	// commandName with the given attributes.
	Authorize(ctx context.Context, principalID, commandName string, attrs command.Attributes) error
}

// Authorization rejects unauthorized dispatches with a failed outcome
// carrying a single halting "unauthorized" error. Rejection is an expected
// failure, not a fault: remote callers get a structured error list.
func Authorization(authorizer Authorizer) command.RunnerMiddleware {
	return func(next command.Runner) command.Runner {
		return func(ctx context.Context, attrs command.Attributes) (*command.Outcome[any], error) {
			name, _ := command.CommandNameFromContext(ctx)
			principalID, _ := command.PrincipalIDFromContext(ctx)

			if err := authorizer.Authorize(ctx, principalID, name, attrs); err != nil {
				return command.Failure[any](command.NewRuntimeError(
					SymbolUnauthorized,
					fmt.Sprintf("not allowed to run %s: %v", name, err),
					command.WithHalt(),
				)), nil
			}

			return next(ctx, attrs)
		}
	}
}

// RoleBasedAuthorizer authorizes by role membership. Commands without an
// entry in commandRoles are open to every caller.
type RoleBasedAuthorizer struct {
	commandRoles   map[string][]string
	principalRoles func(ctx context.Context, principalID string) ([]string, error)
}

// NewRoleBasedAuthorizer creates a role-based authorizer. commandRoles maps
// command names to the roles allowed to run them; principalRoles resolves
// the roles a principal holds.
func NewRoleBasedAuthorizer(
	commandRoles map[string][]string,
	principalRoles func(ctx context.Context, principalID string) ([]string, error),
) *RoleBasedAuthorizer {
	return &RoleBasedAuthorizer{
		commandRoles:   commandRoles,
		principalRoles: principalRoles,
	}
}

func (a *RoleBasedAuthorizer) Authorize(ctx context.Context, principalID, commandName string, attrs command.Attributes) error {
	requiredRoles, exists := a.commandRoles[commandName]
	if !exists || len(requiredRoles) == 0 {
		return nil
	}

	if principalID == "" {
		return fmt.Errorf("no principal for command %s (required roles: %v)", commandName, requiredRoles)
	}

	held, err := a.principalRoles(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to get principal roles: %w", err)
	}

	heldSet := make(map[string]bool, len(held))
	for _, role := range held {
		heldSet[role] = true
	}

	for _, required := range requiredRoles {
		if heldSet[required] {
			return nil
		}
	}

	return fmt.Errorf("principal %s lacks required role for command %s (required: %v)", principalID, commandName, requiredRoles)
}
