package resource

import (
	"context"
	"errors"
	"sync"
)

// ErrOutputResolved is returned when a Resolver is used after its output has
// already been fulfilled or poisoned. Transitioning a slot twice is a
// programming error and is never silently absorbed.
var ErrOutputResolved = errors.New("output already resolved")

// Output is the read side of a single-assignment property slot. It holds a
// (value, known, secret) triple that transitions exactly once from pending to
// either fulfilled or poisoned, and the set of resources the value depends
// on. Any number of readers may block on a pending output; the terminal state
// is broadcast to all of them.
type Output struct {
	deps []*Resource
	done chan struct{}

	mu       sync.Mutex
	resolved bool
	value    any
	known    bool
	secret   bool
	err      error
}

// Resolver is the write side of an Output. Exactly one of Fulfill or Reject
// may be called, exactly once.
type Resolver struct {
	out *Output
}

// NewOutput creates a pending output depending on the given resources,
// together with its resolver.
func NewOutput(deps ...*Resource) (*Output, *Resolver) {
	out := &Output{
		deps: append([]*Resource(nil), deps...),
		done: make(chan struct{}),
	}
	return out, &Resolver{out: out}
}

// NewResolvedOutput creates an output that is already fulfilled with the
// given triple. Useful for wrapping plain values in output form.
func NewResolvedOutput(value any, known, secret bool, deps ...*Resource) *Output {
	out, resolver := NewOutput(deps...)
	// The output is private until returned, so this cannot double-resolve.
	_ = resolver.Fulfill(value, known, secret)
	return out
}

// Dependencies returns the resources this output's value depends on. The
// set is fixed at construction and available without blocking.
func (o *Output) Dependencies() []*Resource {
	return append([]*Resource(nil), o.deps...)
}

// Value blocks until the output is terminal, then returns its value, or the
// poisoning cause if the output was rejected.
func (o *Output) Value(ctx context.Context) (any, error) {
	if err := o.await(ctx); err != nil {
		return nil, err
	}
	return o.value, o.err
}

// Known blocks until the output is terminal, then reports whether the value
// is known, or the poisoning cause if the output was rejected.
func (o *Output) Known(ctx context.Context) (bool, error) {
	if err := o.await(ctx); err != nil {
		return false, err
	}
	return o.known, o.err
}

// Secret blocks until the output is terminal, then reports whether the value
// is secret, or the poisoning cause if the output was rejected.
func (o *Output) Secret(ctx context.Context) (bool, error) {
	if err := o.await(ctx); err != nil {
		return false, err
	}
	return o.secret, o.err
}

// await blocks until the output is terminal or ctx is done. Once the done
// channel is closed the triple is immutable, so reads need no lock.
func (o *Output) await(ctx context.Context) error {
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fulfill transitions the output to its terminal fulfilled state, delivering
// the whole (value, known, secret) triple at once. It returns
// ErrOutputResolved if the output is already terminal.
func (r *Resolver) Fulfill(value any, known, secret bool) error {
	o := r.out
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resolved {
		return ErrOutputResolved
	}
	o.value = value
	o.known = known
	o.secret = secret
	o.resolved = true
	close(o.done)
	return nil
}

// Reject poisons the output: every current and future reader of any of the
// three facts observes cause. It returns ErrOutputResolved if the output is
// already terminal.
func (r *Resolver) Reject(cause error) error {
	o := r.out
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resolved {
		return ErrOutputResolved
	}
	o.err = cause
	o.resolved = true
	close(o.done)
	return nil
}
