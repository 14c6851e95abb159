package command

import (
	"context"
	"sort"
)

// Phase identifies when a callback runs relative to a transition's core
// action.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
	PhaseAround Phase = "around"
)

// Hook is a before/after transition callback. Returning ErrHalted (typically
// by propagating the result of an Add*Error call) halts the run; any other
// non-nil error is treated as a fault and propagates out of Run unconverted.
type Hook[I any] func(ctx context.Context, run *Run[I]) error

// Next continues a transition from inside an around callback.
type Next func(ctx context.Context) error

// AroundHook wraps a transition's core action. It must call next for the
// action to run; skipping next skips the action (and any inner around
// callbacks) while the transition still completes.
type AroundHook[I any] func(ctx context.Context, run *Run[I], next Next) error

// CallbackOption narrows a registration to particular transitions or assigns
// its priority.
type CallbackOption func(*callbackMatch)

type callbackMatch struct {
	from       State
	to         State
	transition string
	priority   int
}

// MatchFrom restricts a registration to transitions leaving the given state.
func MatchFrom(s State) CallbackOption {
	return func(m *callbackMatch) { m.from = s }
}

// MatchTo restricts a registration to transitions entering the given state.
func MatchTo(s State) CallbackOption {
	return func(m *callbackMatch) { m.to = s }
}

// MatchTransition restricts a registration to the named transition.
func MatchTransition(name string) CallbackOption {
	return func(m *callbackMatch) { m.transition = name }
}

// WithPriority orders callbacks on the same transition. Lower priorities run
// first; ties run in registration order. The default priority is 0.
func WithPriority(p int) CallbackOption {
	return func(m *callbackMatch) { m.priority = p }
}

// registration is one row of a definition's callback table. Zero-valued
// matcher fields are wildcards.
type registration[I any] struct {
	phase  Phase
	match  callbackMatch
	seq    int
	hook   Hook[I]
	around AroundHook[I]
}

func (r *registration[I]) matches(t Transition) bool {
	if r.match.from != "" && r.match.from != t.From {
		return false
	}
	if r.match.to != "" && r.match.to != t.To {
		return false
	}
	if r.match.transition != "" && r.match.transition != t.Name {
		return false
	}
	return true
}

// callbackRegistry holds the registrations of one definition. It is built at
// definition time and read without locking during runs; registering after the
// first run is undefined.
type callbackRegistry[I any] struct {
	entries []registration[I]
	seq     int
}

func (c *callbackRegistry[I]) register(phase Phase, hook Hook[I], around AroundHook[I], opts []CallbackOption) {
	var match callbackMatch
	for _, opt := range opts {
		opt(&match)
	}
	c.entries = append(c.entries, registration[I]{
		phase:  phase,
		match:  match,
		seq:    c.seq,
		hook:   hook,
		around: around,
	})
	c.seq++
}

// matching returns the registrations for phase that match t, ordered by
// ascending priority with registration order breaking ties.
func (c *callbackRegistry[I]) matching(phase Phase, t Transition) []registration[I] {
	var out []registration[I]
	for _, r := range c.entries {
		if r.phase == phase && r.matches(t) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].match.priority < out[j].match.priority
	})
	return out
}

func (c *callbackRegistry[I]) hasAny() bool {
	return len(c.entries) > 0
}
