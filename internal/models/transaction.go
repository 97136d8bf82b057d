package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the ledger entry kind. Only debits exist today.
type TransactionType string

const (
	TransactionDebit TransactionType = "debit"
)

// Transaction is one immutable ledger row.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionType `json:"transaction_type"`
	CreatedAt time.Time       `json:"created_at"`
}
