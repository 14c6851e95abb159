package command

import (
	"context"
	"fmt"
)

// Future is the pending result of RunAsync. It is safe to share across
// goroutines; Get may be called any number of times.
type Future[O any] struct {
	done    chan struct{}
	outcome *Outcome[O]
	err     error
}

// RunAsync drives the command on its own goroutine. A panic escaping the run
// is captured and surfaced as the future's error.
func (d *Definition[I, O]) RunAsync(ctx context.Context, attrs Attributes) *Future[O] {
	f := &Future[O]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if rec := recover(); rec != nil {
				f.outcome, f.err = nil, fmt.Errorf("command %s: async run panicked: %v", d.name, rec)
			}
		}()
		f.outcome, f.err = d.Run(ctx, attrs)
	}()
	return f
}

// Done is closed once the run has finished.
func (f *Future[O]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the run finishes or ctx is done, whichever comes first.
func (f *Future[O]) Get(ctx context.Context) (*Outcome[O], error) {
	select {
	case <-f.done:
		return f.outcome, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
