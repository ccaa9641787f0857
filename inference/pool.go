package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed indicates the pool has been closed.
var ErrPoolClosed = errors.New("inference: pool closed")

// Pool holds a fixed number of sessions over one model, so multiple
// requests can run inference concurrently while each session stays
// single-tenant.
type Pool struct {
	sessions chan *Session
	size     int
	mu       sync.Mutex
	closed   bool
}

// NewPool creates a pool of size sessions over the model at modelPath.
// Sizes below 1 default to 1.
func NewPool(modelPath string, size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	pool := &Pool{
		sessions: make(chan *Session, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		session, err := NewSession(modelPath)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("creating session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	return pool, nil
}

// Acquire takes a session from the pool, blocking until one is free or ctx
// is canceled.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case session, ok := <-p.sessions:
		if !ok {
			return nil, ErrPoolClosed
		}
		return session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a session to the pool.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		_ = s.Close()
		return
	}

	select {
	case p.sessions <- s:
	default:
		_ = s.Close()
	}
}

// Run acquires a session, executes the batch, and releases the session.
func (p *Pool) Run(ctx context.Context, inputIDs, attentionMask [][]int64) (*Logits, error) {
	session, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(session)

	return session.Run(ctx, inputIDs, attentionMask)
}

// Close closes all sessions in the pool.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.sessions)

	var errs []error
	for session := range p.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of sessions.
func (p *Pool) Size() int { return p.size }
