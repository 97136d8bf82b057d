package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Patch-lnd/AttendanceSystem/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientFunds is returned by Debit when the locked balance is lower
// than the requested amount. Nothing was written.
var ErrInsufficientFunds = errors.New("insufficient balance")

// ErrLedgerInsert wraps a failure inserting the transaction row.
var ErrLedgerInsert = errors.New("insert transaction")

// ErrBalanceUpdate wraps a failure decrementing the balance or committing.
var ErrBalanceUpdate = errors.New("update balance")

// Store captures the persistence operations needed by the engines and handlers.
type Store interface {
	FindUserByBadge(ctx context.Context, badgeID string) (models.User, error)
	SetPresence(ctx context.Context, userID int64, present bool) error
	// Debit records a debit ledger row and decrements the balance as one
	// atomic unit. Either both writes land or neither does.
	Debit(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	Ping(ctx context.Context) error
}
