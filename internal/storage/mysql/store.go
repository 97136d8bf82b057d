package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const userColumns = `id, full_name, rfid_uid, is_present, pin_code, balance`

// Store provides MySQL-backed persistence for users and their ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an open connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the pool for health and pool statistics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FindUserByBadge fetches the single user owning a badge UID.
func (s *Store) FindUserByBadge(ctx context.Context, badgeID string) (models.User, error) {
	const op = "storage.mysql.FindUserByBadge"

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE rfid_uid = ?`, badgeID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// SetPresence writes the presence flag keyed by the primary id.
func (s *Store) SetPresence(ctx context.Context, userID int64, present bool) error {
	const op = "storage.mysql.SetPresence"

	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_present = ? WHERE id = ?`, present, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// counts matched rows, the DSN sets clientFoundRows
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// Debit locks the user row, re-checks the balance, appends the ledger row and
// decrements the balance inside one transaction.
func (s *Store) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error) {
	const op = "storage.mysql.Debit"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: lock balance: %w", op, err)
	}
	if balance.LessThan(amount) {
		return models.Transaction{}, storage.ErrInsufficientFunds
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, transaction_type) VALUES (?, ?, ?)`,
		userID, amount, string(models.TransactionDebit),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w: %w", op, storage.ErrLedgerInsert, err)
	}
	txID, err := res.LastInsertId()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w: %w", op, storage.ErrLedgerInsert, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance - ? WHERE id = ?`, amount, userID); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w: %w", op, storage.ErrBalanceUpdate, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: commit: %w: %w", op, storage.ErrBalanceUpdate, err)
	}

	return models.Transaction{
		ID:        txID,
		UserID:    userID,
		Amount:    amount,
		Type:      models.TransactionDebit,
		CreatedAt: s.now(),
	}, nil
}

// ListUsers returns every user ordered by name, for the dashboard.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.mysql.ListUsers"

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u   models.User
		pin sql.NullString
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.RFIDUID, &u.IsPresent, &pin, &u.Balance); err != nil {
		return models.User{}, err
	}
	u.PINCode = pin.String
	return u, nil
}
