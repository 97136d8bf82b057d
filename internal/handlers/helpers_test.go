package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/engine"
	"github.com/Patch-lnd/AttendanceSystem/internal/handlers"
	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/middleware"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/routes"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
	"github.com/Patch-lnd/AttendanceSystem/internal/views"
)

type fakeStore struct {
	mu      sync.Mutex
	users   []models.User
	ledger  []models.Transaction
	findErr error
	listErr error
	pingErr error
	finds   int
	hold    *lookupHold
}

func (s *fakeStore) FindUserByBadge(_ context.Context, badgeID string) (models.User, error) {
	user, err := s.lookup(badgeID)

	s.mu.Lock()
	hold := s.hold
	s.hold = nil
	s.mu.Unlock()
	if hold != nil {
		close(hold.reached)
		<-hold.release
	}
	return user, err
}

func (s *fakeStore) lookup(badgeID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.findErr != nil {
		return models.User{}, s.findErr
	}
	for _, u := range s.users {
		if u.RFIDUID == badgeID {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// lookupHold parks the next FindUserByBadge after it has read the record.
type lookupHold struct {
	reached chan struct{}
	release chan struct{}
}

func (s *fakeStore) holdNextLookup() *lookupHold {
	hold := &lookupHold{reached: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.hold = hold
	s.mu.Unlock()
	return hold
}

func (s *fakeStore) SetPresence(_ context.Context, userID int64, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].IsPresent = present
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) Debit(_ context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID != userID {
			continue
		}
		if s.users[i].Balance.LessThan(amount) {
			return models.Transaction{}, storage.ErrInsufficientFunds
		}
		s.users[i].Balance = s.users[i].Balance.Sub(amount)
		tx := models.Transaction{ID: int64(len(s.ledger) + 1), UserID: userID, Amount: amount, Type: models.TransactionDebit}
		s.ledger = append(s.ledger, tx)
		return tx, nil
	}
	return models.Transaction{}, storage.ErrNotFound
}

func (s *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.User(nil), s.users...), nil
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) setFindErr(err error) {
	s.mu.Lock()
	s.findErr = err
	s.mu.Unlock()
}

func (s *fakeStore) findCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}

func seededStore() *fakeStore {
	return &fakeStore{users: []models.User{
		{ID: 7, FullName: "Alice", RFIDUID: "A1B2C3D4", PINCode: "0000", Balance: decimal.NewFromInt(20)},
		{ID: 9, FullName: "Bob", RFIDUID: "X9", PINCode: "1234", Balance: decimal.NewFromInt(50)},
	}}
}

type testServer struct {
	app   *fiber.App
	store *fakeStore
	hub   *hub.Hub
	cards *cache.Cache[models.User]
}

func newTestServer(t *testing.T, store *fakeStore) *testServer {
	t.Helper()

	h := hub.New(16)
	cards := cache.New[models.User](time.Minute, 0)
	engines := engine.New(store, h, time.Second)
	metrics := middleware.NewMetrics()

	app := fiber.New(fiber.Config{Views: views.Engine()})
	app.Use(metrics.Handler())
	routes.Register(app, routes.Deps{
		Attendance:      handlers.NewAttendanceHandler(engines.Presence, store, cards, time.Second),
		Cards:           handlers.NewCardHandler(store, cards, time.Second),
		Transactions:    handlers.NewTransactionHandler(engines.Transactions, h, cards, time.Hour),
		Health:          handlers.NewHealthHandler(store, h, "test"),
		Status:          handlers.NewStatusHandler(nil, h, metrics, cards),
		Hub:             h,
		DeviceRateLimit: 1000,
	})

	t.Cleanup(func() {
		h.Close()
		cards.Stop()
	})
	return &testServer{app: app, store: store, hub: h, cards: cards}
}

func (s *testServer) do(t *testing.T, method, target, contentType, body string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

// nextFrame waits for one frame on the viewer's queue.
func nextFrame(t *testing.T, v *hub.Viewer) string {
	t.Helper()
	select {
	case frame := <-v.Messages():
		return string(frame)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return ""
	}
}

func assertNoFrame(t *testing.T, v *hub.Viewer) {
	t.Helper()
	select {
	case frame := <-v.Messages():
		t.Fatalf("unexpected frame %s", frame)
	case <-time.After(20 * time.Millisecond):
	}
}
