package client

import (
	"context"
	"sync/atomic"
)

// Future is the single-resolution result of one in-flight call. The completion
// path is its only writer; any number of readers may wait on it.
type Future[T any] struct {
	resolved atomic.Bool
	done     chan struct{}
	value    T
	err      error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future that is already resolved with v or err.
func Completed[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(v, err)
	return f
}

// complete resolves the future. Only the first call wins; later calls report false.
func (f *Future[T]) complete(v T, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.value = v
	f.err = err
	close(f.done)
	return true
}

func (f *Future[T]) succeed(v T) bool {
	return f.complete(v, nil)
}

func (f *Future[T]) fail(err error) bool {
	var zero T
	return f.complete(zero, err)
}

// Done is closed once the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx is done. Giving up on ctx does
// not cancel the underlying call.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Ready reports whether the future has resolved, without blocking.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then maps a successful result. Failures pass through untouched.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			out.fail(f.err)
			return
		}
		out.complete(fn(f.value))
	}()
	return out
}

// Chain issues the next call once f succeeds and resolves with its result.
func Chain[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			out.fail(f.err)
			return
		}
		next := fn(f.value)
		<-next.done
		out.complete(next.value, next.err)
	}()
	return out
}
