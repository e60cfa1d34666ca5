package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/errors"
)

// backgroundTasks runs follow-up work after the response is decided.
// Shutdown waits for it through the fx stop hook.
type backgroundTasks struct {
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newBackgroundTasks(logger *slog.Logger) *backgroundTasks {
	return &backgroundTasks{logger: logger}
}

// Go runs fn detached from the request's cancellation. The request logger is kept.
// Errors and panics are logged.
func (b *backgroundTasks) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	logger := deliverycontext.GetLoggerOrDefault(ctx, b.logger).With(slog.String("task", name))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Background task panicked", slog.Any("panic", r))
			}
		}()

		if err := fn(ctx); err != nil {
			logger.Error("Background task failed", slog.Any("error", err))
		}
	}()
}

// Wait blocks until every started task returns or ctx is done.
func (b *backgroundTasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "background tasks still running")
	}
}
