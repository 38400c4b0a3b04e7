package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/utils/errutil"
)

// Dispatcher runs handlers detached from the caller's cancellation and keeps track of them
// so that a server can drain in-flight work on shutdown.
type Dispatcher struct {
	wg sync.WaitGroup
}

var defaultDispatcher = &Dispatcher{}

// Dispatch runs handler on the default Dispatcher
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	defaultDispatcher.Go(ctx, handler)
}

// Wait blocks until every handler started with Dispatch has returned, or ctx is done
func Wait(ctx context.Context) error {
	return defaultDispatcher.Wait(ctx)
}

// Go executes handler in a new goroutine. The handler receives a background context that
// keeps the caller's logger. Returned errors and panics are reported through errutil.Handle.
func (d *Dispatcher) Go(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				errutil.Handle(newCtx, "panic in async handler", goerr.New("recovered panic", goerr.V("recover", r)))
			}
		}()

		if err := handler(newCtx); err != nil {
			errutil.Handle(newCtx, "error in async handler", err)
		}
	}()
}

// Wait blocks until all handlers have returned. It returns ctx.Err() if ctx is done first.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers still running")
	}
}

func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
