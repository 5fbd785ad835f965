package tracelib

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type resolveTraceRequest struct {
	ctx     context.Context
	index   int
	lines   []string
	results [][]ResolvedHop
	wg      *sync.WaitGroup
}

// poolGroupRequest schedules a group of traces to the worker pool.
// Each trace gets its own slot in results so workers never share
// anything.
type poolGroupRequest struct {
	ctx     context.Context
	cancel  context.CancelFunc
	results [][]ResolvedHop
	wg      *sync.WaitGroup
	pool    *ants.PoolWithFunc
}

func (p *poolGroupRequest) Do(index int, lines []string) error {
	select {
	case <-p.ctx.Done():
		return ErrContextIsClosed
	default:
	}

	p.wg.Add(1)

	req := &resolveTraceRequest{
		ctx:     p.ctx,
		index:   index,
		lines:   lines,
		results: p.results,
		wg:      p.wg,
	}

	if err := p.pool.Invoke(req); err != nil {
		p.wg.Done()
		p.cancel()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func (p *poolGroupRequest) Wait() {
	p.wg.Wait()
	p.cancel()
}

func newPoolGroupRequest(ctx context.Context,
	results [][]ResolvedHop,
	pool *ants.PoolWithFunc) *poolGroupRequest {
	ctx, cancel := context.WithCancel(ctx)

	return &poolGroupRequest{
		ctx:     ctx,
		cancel:  cancel,
		results: results,
		wg:      &sync.WaitGroup{},
		pool:    pool,
	}
}
