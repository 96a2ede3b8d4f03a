package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// taskGroup tracks the background work of one login session: navigation
// prefetch, cache warm-up and window extensions. Shutting it down
// cancels everything and waits, so no request can race a closed
// session.
type taskGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newTaskGroup(logger *slog.Logger) *taskGroup {
	ctx, cancel := context.WithCancel(context.Background())

	return &taskGroup{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Go runs fn on its own goroutine under the group's context.
func (g *taskGroup) Go(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		if err := fn(g.ctx); err != nil && !isCanceled(err) {
			g.logger.Warn("background task failed",
				slog.String("task", name),
				slog.Any("error", err),
			)
		}
	}()
}

// Shutdown cancels all tracked tasks and blocks until they return.
func (g *taskGroup) Shutdown() {
	g.cancel()
	g.wg.Wait()
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
