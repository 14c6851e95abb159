package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyShutdown returns a context that is cancelled on an OS interrupt or
// termination signal. The stop function releases the signal registration;
// call it when shutdown handling is done so a second signal kills the
// process the normal way.
func NotifyShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
