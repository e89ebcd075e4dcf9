package pattern

import (
	"context"
	"sync/atomic"
)

// Canceler is polled by the kernel at row and 64-column checkpoints.
type Canceler interface {
	Canceled() bool
}

// Flag is a cancellation token safe to set from another goroutine.
type Flag struct {
	set atomic.Bool
}

func (f *Flag) Cancel()        { f.set.Store(true) }
func (f *Flag) Reset()         { f.set.Store(false) }
func (f *Flag) Canceled() bool { return f.set.Load() }

type contextCanceler struct {
	ctx context.Context
}

func (c contextCanceler) Canceled() bool {
	return c.ctx.Err() != nil
}

// ContextCanceler reports cancellation once ctx is done.
func ContextCanceler(ctx context.Context) Canceler {
	return contextCanceler{ctx: ctx}
}

func canceled(c Canceler) bool {
	return c != nil && c.Canceled()
}
