package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Patch-lnd/AttendanceSystem/internal/config"
	appdb "github.com/Patch-lnd/AttendanceSystem/internal/db"
	mysqlstore "github.com/Patch-lnd/AttendanceSystem/internal/storage/mysql"
)

// errDupEntry is MySQL's ER_DUP_ENTRY.
const errDupEntry = 1062

type demoUser struct {
	name    string
	uid     string
	pin     string
	balance string
}

var demoUsers = []demoUser{
	{name: "Alice Martin", uid: "A1B2C3D4", pin: "0000", balance: "20.00"},
	{name: "Bob Diallo", uid: "X9", pin: "1234", balance: "50.00"},
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== Attendance CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Seed database (demo badge holders)")
		fmt.Println("3) List users")
		fmt.Println("4) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck(cfg)
		case "2":
			doSeed(cfg)
		case "3":
			doListUsers(cfg)
		case "4":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func doHealthCheck(cfg config.Config) {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:" + cfg.Port
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(base, "/") + "/api/health")
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func connect(cfg config.Config) (*sql.DB, context.Context, context.CancelFunc, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := appdb.Connect(ctx, cfg.Database, 1, 0)
	if err != nil {
		cancel()
		log.Println("DB connect error:", err)
		return nil, nil, nil, false
	}
	if err := appdb.EnsureSchema(ctx, db, cfg.Database.SkipSchema); err != nil {
		cancel()
		db.Close()
		log.Println("Ensure schema error:", err)
		return nil, nil, nil, false
	}
	return db, ctx, cancel, true
}

func doSeed(cfg config.Config) {
	db, ctx, cancel, ok := connect(cfg)
	if !ok {
		return
	}
	defer cancel()
	defer db.Close()

	for _, u := range demoUsers {
		seedUser(ctx, db, u)
	}
}

func seedUser(ctx context.Context, db *sql.DB, u demoUser) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.pin), bcrypt.DefaultCost)
	if err != nil {
		fmt.Println("Seed: bcrypt error:", err)
		return
	}
	balance := decimal.RequireFromString(u.balance)

	_, err = db.ExecContext(ctx,
		"INSERT INTO users (full_name, rfid_uid, is_present, pin_code, balance) VALUES (?, ?, FALSE, ?, ?)",
		u.name, u.uid, string(hash), balance)
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &myErr) && myErr.Number == errDupEntry:
		fmt.Printf("Seed: badge %s already registered\n", u.uid)
	case err != nil:
		fmt.Println("Seed: insert error:", err)
	default:
		fmt.Printf("Seed: created %s (badge %s, PIN %s, balance %s)\n", u.name, u.uid, u.pin, balance.StringFixed(2))
	}
}

func doListUsers(cfg config.Config) {
	db, ctx, cancel, ok := connect(cfg)
	if !ok {
		return
	}
	defer cancel()
	defer db.Close()

	users, err := mysqlstore.New(db).ListUsers(ctx)
	if err != nil {
		fmt.Println("List: error:", err)
		return
	}
	if len(users) == 0 {
		fmt.Println("No users")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBADGE\tPRESENT\tBALANCE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.FullName, u.RFIDUID, u.IsPresent, u.Balance.StringFixed(2))
	}
	w.Flush()
}
