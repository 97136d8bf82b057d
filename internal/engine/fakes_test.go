package engine

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// memStore is an in-memory storage.Store with injectable failures.
type memStore struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	ledger []models.Transaction

	findErr     error
	presenceErr error
	debitErr    error

	presenceWrites int
	block          chan struct{}
}

var _ storage.Store = (*memStore)(nil)

func newMemStore(users ...models.User) *memStore {
	s := &memStore{users: make(map[int64]*models.User)}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *memStore) FindUserByBadge(ctx context.Context, badgeID string) (models.User, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return models.User{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return models.User{}, s.findErr
	}
	for _, u := range s.users {
		if u.RFIDUID == badgeID {
			return *u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memStore) SetPresence(_ context.Context, userID int64, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presenceErr != nil {
		return s.presenceErr
	}
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsPresent = present
	s.presenceWrites++
	return nil
}

func (s *memStore) Debit(_ context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debitErr != nil {
		return models.Transaction{}, s.debitErr
	}
	u, ok := s.users[userID]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	if u.Balance.LessThan(amount) {
		return models.Transaction{}, storage.ErrInsufficientFunds
	}
	tx := models.Transaction{
		ID:     int64(len(s.ledger) + 1),
		UserID: userID,
		Amount: amount,
		Type:   models.TransactionDebit,
	}
	s.ledger = append(s.ledger, tx)
	u.Balance = u.Balance.Sub(amount)
	return tx, nil
}

func (s *memStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) user(id int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) ledgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

// recorder captures broadcasts in order.
type recorder struct {
	mu     sync.Mutex
	events []hub.Event
}

func (r *recorder) Broadcast(e hub.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return 1
}

func (r *recorder) all() []hub.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hub.Event(nil), r.events...)
}
