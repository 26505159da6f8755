// Package interrupt implements a scoped SIGINT observer: arming installs a
// process-wide handler that records the interrupt in a flag and cancels a
// context, disarming restores the previous disposition. Only one guard may
// be armed at a time; concurrent interruptible batches are not supported.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

// armed guards the process-global signal disposition.
var armed atomic.Bool

// Guard is an armed interrupt observer. Disarm must be called on every exit
// path after a successful Arm.
type Guard struct {
	ch          chan os.Signal
	ctx         context.Context
	cancel      context.CancelFunc
	interrupted atomic.Bool
	done        chan struct{}
	disarmOnce  sync.Once
}

// Arm installs the interrupt handler. It fails when another guard is
// already armed.
func Arm(ctx context.Context) (*Guard, error) {
	if !armed.CompareAndSwap(false, true) {
		return nil, errors.Wrap(errors.ErrSignalSetup, "another interrupt guard is active")
	}

	gctx, cancel := context.WithCancel(ctx)
	g := &Guard{
		ch:     make(chan os.Signal, 1),
		ctx:    gctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	signal.Notify(g.ch, os.Interrupt)

	go func() {
		defer close(g.done)
		select {
		case <-g.ch:
			g.interrupted.Store(true)
			cancel()
		case <-gctx.Done():
		}
	}()

	return g, nil
}

// Context returns a context that is cancelled when the interrupt fires or
// the parent context ends.
func (g *Guard) Context() context.Context {
	return g.ctx
}

// Interrupted reports whether an interrupt was observed while armed.
func (g *Guard) Interrupted() bool {
	return g.interrupted.Load()
}

// Disarm restores the previous signal disposition. It is idempotent.
func (g *Guard) Disarm() {
	g.disarmOnce.Do(func() {
		signal.Stop(g.ch)
		g.cancel()
		<-g.done
		armed.Store(false)
	})
}
