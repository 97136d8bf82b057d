package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Patch-lnd/AttendanceSystem/internal/config"
)

// errDupKeyName is MySQL's ER_DUP_KEYNAME, returned when an index exists.
const errDupKeyName = 1061

// Open returns a MySQL pool for cfg without touching the network.
func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Connect opens the pool and retries the first ping until it answers,
// attempts run out or ctx ends.
func Connect(ctx context.Context, cfg config.Database, attempts int, wait time.Duration) (*sql.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Printf("✅ [DB] connected to %s:%s/%s", cfg.Host, cfg.Port, cfg.Name)
			return db, nil
		}
		if i >= attempts {
			break
		}

		log.Printf("⚠️ [DB] not ready (attempt %d/%d): %v", i, attempts, err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		}
	}

	db.Close()
	return nil, fmt.Errorf("mysql unreachable after %d attempts: %w", attempts, err)
}

// EnsureSchema creates the users and transactions tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB, skip bool) error {
	if skip {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA)")
		return nil
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			full_name VARCHAR(150) NOT NULL,
			rfid_uid VARCHAR(64) NOT NULL UNIQUE,
			is_present BOOLEAN NOT NULL DEFAULT FALSE,
			pin_code VARCHAR(255) NULL,
			balance DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			CONSTRAINT chk_users_balance CHECK (balance >= 0)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return fmt.Errorf("create users: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			transaction_type VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE INDEX idx_transactions_user_created ON transactions(user_id, created_at);
	`); err != nil {
		var myErr *mysql.MySQLError
		if !errors.As(err, &myErr) || myErr.Number != errDupKeyName {
			return fmt.Errorf("create transactions index: %w", err)
		}
		// index already exists
	}

	return nil
}
