package metastore

import (
	"context"
	"fmt"

	"github.com/cuemby/catalogd/pkg/metrics"
)

// Pool is a bounded semaphore over a single underlying Client connection,
// matching the source's "MetaStore client is obtained from a bounded
// pool... leased for the duration of one operation and released on all
// exit paths" contract. The same Client is shared across leases; the pool
// bounds concurrent callers, it does not multiplex separate connections.
type Pool struct {
	client Client
	slots  chan struct{}
}

// NewPool wraps client with a semaphore of the given size.
func NewPool(client Client, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{client: client, slots: make(chan struct{}, size)}
}

// Lease is a checked-out handle to the pooled Client. Callers MUST call
// Release exactly once, on every exit path (including error returns).
type Lease struct {
	pool   *Pool
	Client Client
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case p.slots <- struct{}{}:
		metrics.MetaStoreLeasesInUse.Inc()
		return &Lease{pool: p, Client: p.client}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire metastore lease: %w", ctx.Err())
	}
}

// Release returns the lease's slot to the pool. Safe to call once; a
// second call would over-release the semaphore, so callers must guard
// against double-release (e.g. via sync.Once or a single defer).
func (l *Lease) Release() {
	metrics.MetaStoreLeasesInUse.Dec()
	<-l.pool.slots
}

// Close releases the pool's underlying client. Callers must ensure no
// leases are outstanding.
func (p *Pool) Close() error {
	return p.client.Close()
}
