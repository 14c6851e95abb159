package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHalted is the control-flow signal that stops a run. It is returned
	// by the Add*Error methods when the recorded error halts, and by
	// RunSubcommand when the child failed; phase code propagates it with an
	// ordinary return.
	ErrHalted = errors.New("command run halted")

	// ErrCommandNotFound is returned when a registry has no command under
	// the requested name.
	ErrCommandNotFound = errors.New("command not found")
)

// ErrorCategory distinguishes the two classes of structured errors.
type ErrorCategory string

const (
	// CategoryData marks errors about invalid input values. They carry the
	// path of the offending attribute.
	CategoryData ErrorCategory = "data"

	// CategoryRuntime marks errors raised while loading records, executing,
	// or during the transaction phases.
	CategoryRuntime ErrorCategory = "runtime"
)

// Error is a structured failure recorded against a run. It is a value in the
// outcome, not a fault: faults travel as ordinary Go errors instead.
type Error struct {
	Category    ErrorCategory  `json:"category"`
	Symbol      string         `json:"symbol"`
	Path        []string       `json:"path,omitempty"`
	RuntimePath []string       `json:"runtime_path,omitempty"`
	Message     string         `json:"message"`
	Context     map[string]any `json:"context,omitempty"`
	Halt        bool           `json:"-"`
}

// ErrorOption configures an Error at construction time.
type ErrorOption func(*Error)

// WithContext attaches one context key/value pair to the error.
func WithContext(key string, value any) ErrorOption {
	return func(e *Error) {
		if e.Context == nil {
			e.Context = make(map[string]any)
		}
		e.Context[key] = value
	}
}

// WithHalt marks the error as halting: recording it stops the run.
func WithHalt() ErrorOption {
	return func(e *Error) {
		e.Halt = true
	}
}

// NewInputError creates a data error for the attribute at path.
func NewInputError(path []string, symbol, message string, opts ...ErrorOption) *Error {
	e := &Error{
		Category: CategoryData,
		Symbol:   symbol,
		Path:     append([]string(nil), path...),
		Message:  message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRuntimeError creates a runtime error.
func NewRuntimeError(symbol, message string, opts ...ErrorOption) *Error {
	e := &Error{
		Category: CategoryRuntime,
		Symbol:   symbol,
		Message:  message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key returns the stable identity of the error:
// runtime path segments joined by ">", then category, path and symbol joined
// by ".". Two errors about the same problem share a key.
func (e *Error) Key() string {
	var b strings.Builder
	for _, seg := range e.RuntimePath {
		b.WriteString(seg)
		b.WriteString(">")
	}
	b.WriteString(string(e.Category))
	for _, seg := range e.Path {
		b.WriteString(".")
		b.WriteString(seg)
	}
	b.WriteString(".")
	b.WriteString(e.Symbol)
	return b.String()
}

func (e *Error) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s: %s", strings.Join(e.Path, "."), e.Symbol, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Symbol, e.Message)
}

// clone returns a deep-enough copy so merged errors never alias the source.
func (e *Error) clone() *Error {
	c := *e
	c.Path = append([]string(nil), e.Path...)
	c.RuntimePath = append([]string(nil), e.RuntimePath...)
	if e.Context != nil {
		c.Context = make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// ErrorCollection accumulates structured errors for one run. It preserves
// insertion order and remembers whether any recorded error halts. It is owned
// by a single run and is not safe for concurrent use.
type ErrorCollection struct {
	errors []*Error
	halted bool
}

// NewErrorCollection creates an empty collection.
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{}
}

// Add records an error. Adding a halting error marks the collection halted.
func (c *ErrorCollection) Add(err *Error) {
	if err == nil {
		return
	}
	c.errors = append(c.errors, err)
	if err.Halt {
		c.halted = true
	}
}

// AddAll records every error in order.
func (c *ErrorCollection) AddAll(errs []*Error) {
	for _, err := range errs {
		c.Add(err)
	}
}

// Halt marks the collection halted without recording a new error.
func (c *ErrorCollection) Halt() {
	c.halted = true
}

// Halted reports whether a halting error was recorded (or Halt was called).
func (c *ErrorCollection) Halted() bool {
	return c.halted
}

// IsEmpty reports whether no errors were recorded.
func (c *ErrorCollection) IsEmpty() bool {
	return len(c.errors) == 0
}

// Size returns the number of recorded errors.
func (c *ErrorCollection) Size() int {
	return len(c.errors)
}

// Errors returns the recorded errors in insertion order. The slice is a copy;
// the error values are shared.
func (c *ErrorCollection) Errors() []*Error {
	out := make([]*Error, len(c.errors))
	copy(out, c.errors)
	return out
}
