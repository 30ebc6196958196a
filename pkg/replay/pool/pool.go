// Package pool provides a bounded pool of pooled AMQP connections, leased
// one per in-flight request. A fresh channel is opened per request on the
// leased connection; the connection itself is returned to the pool on
// every exit path, including failures.
package pool

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/streamops/replay-service/pkg/concurrency"
	"github.com/streamops/replay-service/pkg/replay/internal/replayerr"
)

// Config configures the pool.
type Config struct {
	URL      string
	Capacity int `env:"AMQP_CONNECTION_POOL_SIZE" env-default:"5"`
}

// Pool is a bounded set of broker connections. Its own synchronization is
// the only cross-request shared state the engine has.
type Pool struct {
	url string
	sem *concurrency.Semaphore

	mu   sync.Mutex
	idle []*amqp.Connection
}

// New creates a pool with the given capacity. Connections are dialed
// lazily, on first acquire, not eagerly at construction time.
func New(cfg Config) *Pool {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 5
	}
	return &Pool{
		url: cfg.URL,
		sem: concurrency.NewSemaphore(int64(capacity)),
	}
}

// Lease is a single borrowed connection. Callers must call Release
// exactly once, on every exit path.
type Lease struct {
	pool *Pool
	conn *amqp.Connection
}

// Acquire blocks until a connection slot is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, replayerr.PoolExhausted(err)
	}

	conn, err := p.takeIdleOrDial()
	if err != nil {
		p.sem.Release(1)
		return nil, replayerr.BrokerTransport(err)
	}

	return &Lease{pool: p, conn: conn}, nil
}

func (p *Pool) takeIdleOrDial() (*amqp.Connection, error) {
	p.mu.Lock()
	for len(p.idle) > 0 {
		n := len(p.idle) - 1
		conn := p.idle[n]
		p.idle = p.idle[:n]
		p.mu.Unlock()
		if !conn.IsClosed() {
			return conn, nil
		}
		p.mu.Lock()
	}
	p.mu.Unlock()

	return amqp.Dial(p.url)
}

// Channel opens a fresh channel on the leased connection. One channel is
// created per request; it is never shared or reused across requests.
func (l *Lease) Channel() (*amqp.Channel, error) {
	ch, err := l.conn.Channel()
	if err != nil {
		return nil, replayerr.BrokerTransport(err)
	}
	return ch, nil
}

// Release returns the connection to the pool, or discards it if it is no
// longer usable. Safe to call exactly once; callers should defer it
// immediately after a successful Acquire.
func (l *Lease) Release() {
	if l.conn.IsClosed() {
		l.pool.sem.Release(1)
		return
	}
	l.pool.mu.Lock()
	l.pool.idle = append(l.pool.idle, l.conn)
	l.pool.mu.Unlock()
	l.pool.sem.Release(1)
}

// Healthy reports whether a connection can be leased and a channel opened
// on it right now. Used by the health endpoint.
func (p *Pool) Healthy(ctx context.Context) bool {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return false
	}
	defer lease.Release()

	ch, err := lease.Channel()
	if err != nil {
		return false
	}
	defer ch.Close()

	return !ch.IsClosed()
}

// Close closes every idle connection. Connections leased at the time of
// Close are not closed by it: Release puts a still-open one back on the
// idle list.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, conn := range p.idle {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.idle = nil
	return firstErr
}
