package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultFanOutLimit bounds concurrent requests against a remote API
const DefaultFanOutLimit = 8

// Result is the outcome of one FanOut item
type Result[T any] struct {
	Item T
	Err  error
}

// FanOut calls fn for every item concurrently and waits for all of them. A failing item
// never cancels its siblings: each error, including a recovered panic, is kept in that
// item's Result. Results are returned in the order of items. limit <= 0 means
// DefaultFanOutLimit.
func FanOut[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) []Result[T] {
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}

	results := make([]Result[T], len(items))

	var eg errgroup.Group
	eg.SetLimit(limit)

	for i, item := range items {
		results[i].Item = item
		eg.Go(func() error {
			results[i].Err = runItem(ctx, item, fn)
			return nil
		})
	}

	// every goroutine returns nil, item errors live in results
	_ = eg.Wait()

	return results
}

func runItem[T any](ctx context.Context, item T, fn func(ctx context.Context, item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.From(ctx).Error("panic in fan-out item",
				"recover", r,
				"stack", string(debug.Stack()))
			err = goerr.New("panic in fan-out item", goerr.V("recover", fmt.Sprint(r)))
		}
	}()

	return fn(ctx, item)
}

// Errors returns the failed results only
func Errors[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
