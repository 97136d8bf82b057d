package engine

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
	"github.com/Patch-lnd/AttendanceSystem/internal/validation"
)

// Origin selects how a debit outcome is reported.
type Origin int

const (
	// OriginWeb replies with a rendered form and broadcasts nothing.
	OriginWeb Origin = iota
	// OriginDevice replies with JSON and broadcasts every outcome.
	OriginDevice
)

func (o Origin) String() string {
	if o == OriginDevice {
		return "device"
	}
	return "web"
}

// ParseOrigin maps the request's "from" field to an Origin.
func ParseOrigin(from string) Origin {
	switch strings.ToLower(strings.TrimSpace(from)) {
	case "esp32", "device":
		return OriginDevice
	default:
		return OriginWeb
	}
}

// DebitRequest is a debit attempt as received from a device or the web form.
type DebitRequest struct {
	CardUID string
	PIN     string
	Amount  string
	Origin  Origin
}

// Receipt describes a committed debit.
type Receipt struct {
	User        models.User
	Transaction models.Transaction
	Message     string
}

// TransactionEngine authorizes and records balance debits.
type TransactionEngine struct {
	base
}

// Debit validates req, checks the PIN and the balance, then records the
// ledger row and the decrement atomically. Device-origin requests broadcast
// the outcome with the same message as the reply, failures included.
func (e *TransactionEngine) Debit(ctx context.Context, req DebitRequest) (Receipt, error) {
	receipt, err := e.debit(ctx, req)
	if req.Origin == OriginDevice {
		status, message := "success", receipt.Message
		if err != nil {
			status, message = "error", MessageOf(err)
		}
		e.events.Broadcast(hub.Event{
			Name:    EventTransactionUpdate,
			Payload: models.TransactionUpdate{Status: status, Message: message},
		})
	}
	return receipt, err
}

func (e *TransactionEngine) debit(ctx context.Context, req DebitRequest) (Receipt, error) {
	cardUID := strings.TrimSpace(req.CardUID)
	pin := strings.TrimSpace(req.PIN)
	if cardUID == "" || pin == "" || strings.TrimSpace(req.Amount) == "" {
		return Receipt{}, newError(KindValidation, MsgFieldsRequired, nil)
	}
	amount, err := validation.ParseAmount(req.Amount, "amount")
	if err != nil {
		return Receipt{}, newError(KindValidation, MsgInvalidAmount, err)
	}

	ctx, done, err := e.acquire(ctx, cardUID)
	if err != nil {
		log.Printf("❌ [TX] waiting for card %s: %v", cardUID, err)
		return Receipt{}, newError(KindStore, MsgQueryError, err)
	}
	defer done()

	user, err := e.store.FindUserByBadge(ctx, cardUID)
	if errors.Is(err, storage.ErrNotFound) {
		return Receipt{}, newError(KindNotFound, MsgUserNotFound, err)
	}
	if err != nil {
		log.Printf("❌ [TX] lookup card %s: %v", cardUID, err)
		return Receipt{}, newError(KindStore, MsgQueryError, err)
	}

	if !pinMatches(user.PINCode, pin) {
		log.Printf("⚠️ [TX] invalid PIN for user_id=%d", user.ID)
		return Receipt{}, newError(KindAuth, MsgInvalidPIN, nil)
	}
	if user.Balance.LessThan(amount) {
		return Receipt{}, newError(KindInsufficientFunds, MsgInsufficient, storage.ErrInsufficientFunds)
	}

	tx, err := e.store.Debit(ctx, user.ID, amount)
	if err != nil {
		return Receipt{}, classifyDebitError(user.ID, err)
	}

	user.Balance = user.Balance.Sub(amount)
	log.Printf("💳 [TX] user_id=%d debited %s, balance %s", user.ID, amount.StringFixed(2), user.Balance.StringFixed(2))

	return Receipt{User: user, Transaction: tx, Message: MsgTransactionOK}, nil
}

func classifyDebitError(userID int64, err error) error {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		return newError(KindInsufficientFunds, MsgInsufficient, err)
	case errors.Is(err, storage.ErrNotFound):
		return newError(KindNotFound, MsgUserNotFound, err)
	case errors.Is(err, storage.ErrLedgerInsert):
		log.Printf("❌ [TX] ledger insert user_id=%d: %v", userID, err)
		return newError(KindStore, MsgInsertFailed, err)
	case errors.Is(err, storage.ErrBalanceUpdate):
		log.Printf("❌ [TX] balance update user_id=%d: %v", userID, err)
		return newError(KindStore, MsgBalanceFailed, err)
	default:
		log.Printf("❌ [TX] debit user_id=%d: %v", userID, err)
		return newError(KindStore, MsgQueryError, err)
	}
}

// pinMatches compares trimmed PINs. Stored bcrypt hashes are verified as such.
func pinMatches(stored, supplied string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
