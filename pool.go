package ocidrv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PoolConfig configures a Pool's acquisition algorithm: min/max sessions,
// the growth increment, how long Acquire waits before giving up, and
// whether Acquire returns immediately when the pool is already at max
// (nowait), matching the backend session-pool parameters.
type PoolConfig struct {
	Min       int
	Max       int
	Increment int
	NoWait    bool
	Timeout   time.Duration
}

func defaultPoolConfig() PoolConfig {
	return PoolConfig{Min: 1, Max: 10, Increment: 1, Timeout: 30 * time.Second}
}

// Pool is a session pool (component G): it hands out Connection values
// drawn from or grown within [Min, Max], and reclaims them to an idle list
// on Close rather than tearing down the session, exactly as the backend's
// session pool does.
type Pool struct {
	mu sync.Mutex

	env  *Environment
	cfg  Config
	pcfg PoolConfig

	idle    []*Connection
	active  int
	waiters []chan struct{}

	closed bool
}

// NewPool creates a Pool against dsn, pre-warming it to PoolConfig.Min
// connections.
func (e *Environment) NewPool(ctx context.Context, dsn string, pcfg PoolConfig, opts ...Option) (*Pool, error) {
	if pcfg.Max <= 0 {
		pcfg = defaultPoolConfig()
	}
	cfg := e.baseConfig()
	cfg.DSN = dsn
	for _, o := range opts {
		o(&cfg)
	}

	p := &Pool{env: e, cfg: cfg, pcfg: pcfg}
	for i := 0; i < pcfg.Min; i++ {
		c, err := e.openConnectionWithConfig(ctx, cfg, p)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.idle = append(p.idle, c)
	}
	e.registerPool(p)
	e.log().Info("pool created", "min", pcfg.Min, "max", pcfg.Max)
	return p, nil
}

// Acquire returns an idle Connection, growing the pool by Increment (up to
// Max) if none is idle, or blocks until one is released or pcfg.Timeout
// elapses. NoWait makes Acquire return a busy *Error immediately instead
// of blocking when the pool is saturated.
func (p *Pool) Acquire(ctx context.Context) (*Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, newErr(KindStatementState, "Pool", "pool is closed")
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.active++
		p.mu.Unlock()
		return c, nil
	}
	if p.active < p.pcfg.Max {
		grow := p.pcfg.Increment
		if grow < 1 {
			grow = 1
		}
		if p.active+grow > p.pcfg.Max {
			grow = p.pcfg.Max - p.active
		}
		p.mu.Unlock()

		var first *Connection
		for i := 0; i < grow; i++ {
			c, err := p.env.openConnectionWithConfig(ctx, p.cfg, p)
			if err != nil {
				if first != nil {
					return first, nil
				}
				return nil, err
			}
			if i == 0 {
				first = c
			} else {
				p.mu.Lock()
				p.idle = append(p.idle, c)
				p.mu.Unlock()
			}
		}
		p.mu.Lock()
		p.active++
		p.mu.Unlock()
		return first, nil
	}
	if p.pcfg.NoWait {
		p.mu.Unlock()
		return nil, newErr(KindStatementState, "Pool", "pool exhausted (nowait)")
	}

	wake := make(chan struct{})
	p.waiters = append(p.waiters, wake)
	p.mu.Unlock()

	timeout := p.pcfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-wake:
		return p.Acquire(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, newErr(KindStatementState, "Pool", "acquire timed out after %s", timeout)
	}
}

// release returns c to the idle list and wakes one waiter, if any. Called
// by Connection.Close when the connection belongs to this pool.
func (p *Pool) release(c *Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active--
	if p.closed {
		return
	}
	p.idle = append(p.idle, c)
	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		close(w)
	}
}

// Stats reports the pool's current busy/idle counts.
type PoolStats struct {
	Idle   int
	Active int
}

func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{Idle: len(p.idle), Active: p.active}
}

// Close closes every idle Connection and marks the pool closed; any
// Connection still checked out is closed for real (not returned to idle)
// when its own Close is eventually called.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}

	var firstErr error
	for _, c := range idle {
		c.owner = nil // force a genuine close, not a return-to-pool
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Pool) String() string {
	s := p.Stats()
	return fmt.Sprintf("Pool{idle=%d, active=%d, max=%d}", s.Idle, s.Active, p.pcfg.Max)
}
