package enrich

import (
	"context"
	"sync"
)

// Session is an expensive reusable resource (headless browser page, provider
// connection). The pool recycles a session after a fixed number of uses
// because long-lived scraping sessions degrade.
type Session interface {
	Close() error
}

// SessionFactory creates a fresh session.
type SessionFactory func() (Session, error)

// Lease is one checked-out session. Release returns it to the pool.
type Lease struct {
	Session Session
	pool    *Pool
	slot    *poolSlot
}

func (l *Lease) Release() {
	l.pool.release(l.slot)
}

type poolSlot struct {
	session Session
	uses    int
}

// Pool is a fixed-size session pool with acquire/release semantics and
// recycle-after-N-uses. It replaces ambient global browser state.
type Pool struct {
	factory SessionFactory
	maxUses int
	slots   chan *poolSlot
	mu      sync.Mutex
	closed  bool
}

func NewPool(size, maxUses int, factory SessionFactory) *Pool {
	if size <= 0 {
		size = 1
	}
	slots := make(chan *poolSlot, size)
	for i := 0; i < size; i++ {
		slots <- &poolSlot{}
	}
	return &Pool{
		factory: factory,
		maxUses: maxUses,
		slots:   slots,
	}
}

// Acquire blocks until a slot is free and returns a lease on a live session.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case slot := <-p.slots:
		if slot.session == nil {
			session, err := p.factory()
			if err != nil {
				// Give the empty slot back so the pool does not shrink
				p.slots <- slot
				return nil, err
			}
			slot.session = session
		}
		slot.uses++
		return &Lease{Session: slot.session, pool: p, slot: slot}, nil
	}
}

func (p *Pool) release(slot *poolSlot) {
	// Recycle once the use budget is spent
	if p.maxUses > 0 && slot.uses >= p.maxUses {
		_ = slot.session.Close()
		slot.session = nil
		slot.uses = 0
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		if slot.session != nil {
			_ = slot.session.Close()
		}
		return
	}
	p.slots <- slot
}

// Close shuts down every idle session. In-flight sessions are closed when
// their lease is released.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case slot := <-p.slots:
			if slot.session != nil {
				_ = slot.session.Close()
			}
		default:
			return
		}
	}
}
