package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Runner runs a registered command over raw attributes with the result type
// erased, so transports and tooling can dispatch by name.
type Runner func(ctx context.Context, attrs Attributes) (*Outcome[any], error)

// RunnerMiddleware wraps a Runner. The first middleware added to a registry
// is the outermost.
type RunnerMiddleware func(next Runner) Runner

type registryEntry struct {
	runner   Runner
	manifest Manifest
}

// Registry is a name-keyed dispatch table of commands. Registration happens
// during startup; dispatch is read-mostly and safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]registryEntry
	middleware []RunnerMiddleware
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a command definition under its name. It panics when the name
// is already taken: duplicate registration is a wiring bug, not a runtime
// condition.
func Register[I, O any](reg *Registry, d *Definition[I, O]) {
	runner := func(ctx context.Context, attrs Attributes) (*Outcome[any], error) {
		outcome, err := d.Run(ctx, attrs)
		if err != nil {
			return nil, err
		}
		return eraseOutcome(outcome), nil
	}
	m, err := d.Manifest()
	if err != nil {
		panic(fmt.Sprintf("command: manifest for %q: %v", d.Name(), err))
	}
	reg.add(d.Name(), m, runner)
}

func (reg *Registry) add(name string, m Manifest, r Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.entries[name]; exists {
		panic(fmt.Sprintf("command: %q registered twice", name))
	}
	reg.entries[name] = registryEntry{runner: r, manifest: m}
}

// Use appends dispatch-level middleware applied to every registered runner,
// including commands registered before the call.
func (reg *Registry) Use(mw RunnerMiddleware) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.middleware = append(reg.middleware, mw)
}

// Run dispatches by command name. Unknown names report ErrCommandNotFound.
func (reg *Registry) Run(ctx context.Context, name string, attrs Attributes) (*Outcome[any], error) {
	r, ok := reg.Runner(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return r(ctx, attrs)
}

// Runner returns the named runner with the middleware chain applied. The
// returned runner stamps the command name into the context so middleware can
// identify what it wraps.
func (reg *Registry) Runner(name string) (Runner, bool) {
	reg.mu.RLock()
	e, ok := reg.entries[name]
	mws := reg.middleware
	reg.mu.RUnlock()
	if !ok {
		return nil, false
	}
	r := e.runner
	for i := len(mws) - 1; i >= 0; i-- {
		r = mws[i](r)
	}
	named := func(ctx context.Context, attrs Attributes) (*Outcome[any], error) {
		return r(WithCommandName(ctx, name), attrs)
	}
	return named, true
}

// Names returns the registered command names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.entries))
	for name := range reg.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manifests returns the manifest of every registered command, sorted by
// name.
func (reg *Registry) Manifests() []Manifest {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	manifests := make([]Manifest, 0, len(reg.entries))
	for _, e := range reg.entries {
		manifests = append(manifests, e.manifest)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Name < manifests[j].Name })
	return manifests
}

// Size returns the number of registered commands.
func (reg *Registry) Size() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.entries)
}

func eraseOutcome[O any](o *Outcome[O]) *Outcome[any] {
	if o.IsFailure() {
		return Failure[any](o.Errors()...)
	}
	return Success[any](o.Result())
}
