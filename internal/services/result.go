package services

import (
	"context"
	"fmt"
)

// Result is the tagged outcome of an asynchronous call: exactly one of
// Value or Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn in its own goroutine and delivers exactly one Result on the
// returned channel. The channel is buffered so an abandoned future never
// leaks its goroutine. A panic in fn is reported as an error.
func Async[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- Result[T]{Err: fmt.Errorf("panic in async call: %v", r)}
			}
		}()
		v, err := fn(ctx)
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}

// Await waits for a future or for ctx to end, whichever comes first
func Await[T any](ctx context.Context, future <-chan Result[T]) Result[T] {
	select {
	case r := <-future:
		return r
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}
