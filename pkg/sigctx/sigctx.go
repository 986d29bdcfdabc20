package sigctx

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext is canceled on the first interrupt, terminate or quit
// signal.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}
