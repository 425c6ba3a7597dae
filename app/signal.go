package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

// WithSignals returns a context that is cancelled when the process receives
// SIGINT, SIGTERM, SIGQUIT or SIGHUP.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	osSigCh := make(chan os.Signal, 1)
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	go func() {
		defer signal.Stop(osSigCh)

		select {
		case sig := <-osSigCh:
			logrus.StandardLogger().WithField("type", "app").WithField("signal", sig.String()).Info("interrupt received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
