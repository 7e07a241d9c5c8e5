package cmd

import (
	"context"
	"os/signal"
	"syscall"
)

// CatchCtrlC returns a context that is cancelled upon receipt of SIGINT or
// SIGTERM. The returned func stops listening for signals.
func CatchCtrlC(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
}
