// Package balance runs balance queries off the control loop. At most one
// query is in flight at a time and its result is handed back through Poll.
package balance

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/AlexZinkM/sui-local-wallet/internal/metrics"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// DefaultTimeout bounds a single balance query.
const DefaultTimeout = 15 * time.Second

// Client answers balance queries. Amounts are in MIST.
type Client interface {
	GetBalance(ctx context.Context, address string, network model.Network) (uint64, error)
}

// Request identifies the wallet a query was started for.
type Request struct {
	Address string
	Network model.Network

	// Epoch is an opaque owner counter. The fetcher only copies it to the
	// Result so the owner can recognise answers for a previous wallet.
	Epoch uint64
}

// Result is the outcome of one query. Err wraps model.ErrNetwork on failure.
type Result struct {
	Request

	Balance uint64
	Err     error
}

// Fetcher is the single-flight balance query runner.
type Fetcher struct {
	client  Client
	timeout time.Duration

	gm      *fn.GoroutineManager
	busy    atomic.Bool
	results chan Result
}

// New creates a Fetcher. A non-positive timeout selects DefaultTimeout.
func New(client Client, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		client:  client,
		timeout: timeout,
		gm:      fn.NewGoroutineManager(),
		// Capacity 1 with at most one query in flight: the sender never blocks.
		results: make(chan Result, 1),
	}
}

// Start launches a query for req. It returns false without side effects if a
// query is still in flight or its result has not been polled yet.
func (f *Fetcher) Start(req Request) bool {
	if !f.busy.CompareAndSwap(false, true) {
		log.Debugf("Balance query for %s skipped, one already in flight", req.Address)
		return false
	}

	started := f.gm.Go(context.Background(), func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		f.results <- f.query(ctx, req)
	})
	if !started {
		f.busy.Store(false)
		log.Warnf("Balance fetcher stopped, query for %s not started", req.Address)
		return false
	}

	log.Debugf("Balance query started for %s on %v", req.Address, req.Network)
	return true
}

func (f *Fetcher) query(ctx context.Context, req Request) Result {
	res := Result{Request: req}

	balance, err := f.client.GetBalance(ctx, req.Address, req.Network)
	switch {
	case err == nil:
		res.Balance = balance

	case errors.Is(err, model.ErrNetwork):
		res.Err = err

	default:
		res.Err = fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}

	metrics.BalanceFetches.WithLabelValues(req.Network.String(), metrics.Result(res.Err)).Inc()
	if res.Err != nil {
		log.Warnf("Balance query for %s failed: %v", req.Address, res.Err)
	}
	return res
}

// Poll returns the finished result, if any, without blocking. Polling a
// result frees the fetcher for the next Start.
func (f *Fetcher) Poll() (Result, bool) {
	select {
	case res := <-f.results:
		f.busy.Store(false)
		return res, true
	default:
		return Result{}, false
	}
}

// Busy reports whether a query is in flight or awaiting Poll.
func (f *Fetcher) Busy() bool {
	return f.busy.Load()
}

// Stop cancels an in-flight query and waits for it to exit.
func (f *Fetcher) Stop() {
	f.gm.Stop()
}
