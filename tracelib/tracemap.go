package tracelib

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 64

	workerPoolExpireTime = time.Minute

	strategyHostname = "hostname"
	strategyAddress  = "address"
	strategyNone     = "none"
)

// Opts defines a configuration of Tracemap instance.
type Opts struct {
	Cities    *CityTable
	Airports  *AirportTable
	Store     Store
	Providers []Provider
	Retry     RetryConfig
	Logger    Logger

	// Metrics is optional.
	Metrics *Metrics

	// HeuristicBeforeAddress enables hostname heuristics. If it is
	// false, only address geolocation is used.
	HeuristicBeforeAddress bool

	// WorkerPoolSize limits a number of traces resolved concurrently
	// by ResolveAll.
	WorkerPoolSize int
}

type resolveStrategy struct {
	name    string
	resolve func(context.Context, HopRecord) (LocationGuess, bool)
}

// Tracemap turns traceroute output into a list of hops with locations.
type Tracemap struct {
	strategies []resolveStrategy
	address    *AddressResolver
	logger     Logger
	metrics    *Metrics
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

// Resolve parses lines of a single trace and locates its hops. Hops
// are resolved one by one in the order of the trace. The first hop is
// dropped: this is the origin of the trace and it is drawn separately.
// If ctx is closed before all hops are resolved, ErrContextIsClosed is
// returned instead of a partial trace.
func (t *Tracemap) Resolve(ctx context.Context, lines []string) ([]ResolvedHop, error) {
	t.rwmutex.RLock()
	defer t.rwmutex.RUnlock()

	if t.closed {
		return nil, ErrTracemapShutdown
	}

	hops := t.resolve(ctx, lines)
	if ctx.Err() != nil {
		return nil, ErrContextIsClosed
	}

	return hops, nil
}

// ResolveAll resolves many independent traces concurrently. Results
// have the same order as traces.
func (t *Tracemap) ResolveAll(ctx context.Context, traces [][]string) ([][]ResolvedHop, error) {
	t.rwmutex.RLock()
	defer t.rwmutex.RUnlock()

	if t.closed {
		return nil, ErrTracemapShutdown
	}

	results := make([][]ResolvedHop, len(traces))
	groupRequest := newPoolGroupRequest(ctx, results, t.workerPool)

	for i, v := range traces {
		if err := groupRequest.Do(i, v); err != nil {
			groupRequest.Wait()

			return nil, err
		}
	}

	groupRequest.Wait()

	if ctx.Err() != nil {
		return nil, ErrContextIsClosed
	}

	return results, nil
}

// UsageStats returns usage stats of address geolocation providers.
func (t *Tracemap) UsageStats() []*UsageStats {
	return t.address.UsageStats()
}

func (t *Tracemap) Shutdown() {
	t.rwmutex.Lock()
	defer t.rwmutex.Unlock()

	t.closed = true

	t.closeOnce.Do(func() {
		t.workerPool.Release()
	})
}

func (t *Tracemap) resolve(ctx context.Context, lines []string) []ResolvedHop {
	started := time.Now()
	hops := ParseLines(lines)
	rv := make([]ResolvedHop, 0, len(hops))
	located := 0

	for _, hop := range hops {
		if ctx.Err() != nil {
			return nil
		}

		resolved := ResolvedHop{HopRecord: hop}
		strategyName := strategyNone

		for _, strategy := range t.strategies {
			if guess, ok := strategy.resolve(ctx, hop); ok {
				resolved.Guess = &guess
				strategyName = strategy.name

				break
			}
		}

		t.metrics.hopResolved(strategyName)
		rv = append(rv, resolved)
	}

	if ctx.Err() != nil {
		return nil
	}

	if len(rv) > 0 {
		rv = rv[1:]
	}

	for _, v := range rv {
		if v.Guess != nil {
			located++
		}
	}

	t.metrics.traceResolved(started)
	t.logger.TraceResolved(TraceIDFromContext(ctx), len(rv), located)

	return rv
}

func (t *Tracemap) resolveTask(args interface{}) {
	req := args.(*resolveTraceRequest)
	defer req.wg.Done()

	req.results[req.index] = t.resolve(req.ctx, req.lines)
}

// NewTracemap creates a new instance with hostname heuristics (if
// enabled) followed by address geolocation.
func NewTracemap(opts Opts) (*Tracemap, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is not defined")
	}

	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is not defined")
	}

	rv := &Tracemap{
		address: NewAddressResolver(opts.Store, opts.Providers,
			opts.Retry, opts.Logger, opts.Metrics),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	if opts.HeuristicBeforeAddress {
		if opts.Cities == nil || opts.Airports == nil {
			return nil, fmt.Errorf("reference tables are required for hostname heuristics")
		}

		hostname := NewHostnameResolver(opts.Cities, opts.Airports)

		rv.strategies = append(rv.strategies, resolveStrategy{
			name: strategyHostname,
			resolve: func(_ context.Context, hop HopRecord) (LocationGuess, bool) {
				return hostname.Resolve(hop.Hostname)
			},
		})
	}

	rv.strategies = append(rv.strategies, resolveStrategy{
		name: strategyAddress,
		resolve: func(ctx context.Context, hop HopRecord) (LocationGuess, bool) {
			return rv.address.Resolve(ctx, hop.Address)
		},
	})

	poolSize := opts.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.resolveTask,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	rv.workerPool = pool

	return rv, nil
}
