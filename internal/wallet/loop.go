package wallet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/ticker"
)

// ErrLoopStopped is returned by Do once the loop has shut down.
var ErrLoopStopped = errors.New("wallet loop stopped")

type request struct {
	fn   func(*Controller) error
	done chan error
}

// Loop is the single goroutine allowed to touch the Controller. User actions
// are submitted through Do; finished balance queries are applied on ticks.
type Loop struct {
	started atomic.Bool
	stopped atomic.Bool

	ctrl   *Controller
	ticker ticker.Ticker

	requests chan request

	wg   sync.WaitGroup
	quit chan struct{}
}

// NewLoop wraps ctrl. The ticker paces Controller.Tick.
func NewLoop(ctrl *Controller, t ticker.Ticker) *Loop {
	return &Loop{
		ctrl:     ctrl,
		ticker:   t,
		requests: make(chan request),
		quit:     make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return nil
	}

	log.Infof("Wallet loop starting")

	l.ticker.Resume()

	l.wg.Add(1)
	go l.run()

	return nil
}

// Stop shuts the loop down and waits for it to exit.
func (l *Loop) Stop() error {
	if !l.stopped.CompareAndSwap(false, true) {
		return nil
	}

	log.Infof("Wallet loop shutting down...")
	defer log.Debugf("Wallet loop shutdown complete")

	close(l.quit)
	l.wg.Wait()
	l.ticker.Stop()

	return nil
}

func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ticker.Ticks():
			l.ctrl.Tick()

		case req := <-l.requests:
			req.done <- req.fn(l.ctrl)

		case <-l.quit:
			return
		}
	}
}

// Do runs f on the loop goroutine and returns its error. It gives up when
// ctx is done or the loop stops before f is picked up. Once the loop has
// taken f, Do waits for it to finish, so buffers captured by f stay valid
// until Do returns.
func (l *Loop) Do(ctx context.Context, f func(*Controller) error) error {
	req := request{
		fn:   f,
		done: make(chan error, 1),
	}

	select {
	case l.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLoopStopped
	}

	// run always answers a request it received, even while quitting.
	return <-req.done
}
