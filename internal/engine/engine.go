package engine

import (
	"context"
	"time"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// DefaultStoreTimeout bounds one engine call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// Broadcaster fans events out to live viewers.
type Broadcaster interface {
	Broadcast(e hub.Event) int
}

// base holds what both engines share: the store, the hub, per-badge
// serialization and the store deadline.
type base struct {
	store   storage.Store
	events  Broadcaster
	locks   *keyedMutex
	timeout time.Duration
}

func newBase(store storage.Store, events Broadcaster, locks *keyedMutex, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return base{store: store, events: events, locks: locks, timeout: timeout}
}

// Engines bundles both engines around one shared keyed lock, so a toggle and
// a debit on the same badge never interleave.
type Engines struct {
	Presence     *PresenceEngine
	Transactions *TransactionEngine
}

// New wires both engines against the same store, hub and lock table.
func New(store storage.Store, events Broadcaster, timeout time.Duration) Engines {
	locks := newKeyedMutex()
	return Engines{
		Presence:     &PresenceEngine{base: newBase(store, events, locks, timeout)},
		Transactions: &TransactionEngine{base: newBase(store, events, locks, timeout)},
	}
}

// acquire starts the bounded call and takes the badge lock. The returned
// cleanup releases both.
func (b base) acquire(ctx context.Context, badgeID string) (context.Context, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	unlock, err := b.locks.Lock(ctx, badgeID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, func() {
		unlock()
		cancel()
	}, nil
}
