package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/config"
	appdb "github.com/Patch-lnd/AttendanceSystem/internal/db"
	"github.com/Patch-lnd/AttendanceSystem/internal/engine"
	"github.com/Patch-lnd/AttendanceSystem/internal/handlers"
	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/middleware"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/routes"
	mysqlstore "github.com/Patch-lnd/AttendanceSystem/internal/storage/mysql"
	"github.com/Patch-lnd/AttendanceSystem/internal/views"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	db, err := appdb.Connect(ctx, cfg.Database, 10, 5*time.Second)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = appdb.EnsureSchema(schemaCtx, db, cfg.Database.SkipSchema)
	cancel()
	if err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	store := mysqlstore.New(db)
	events := hub.New(cfg.HubBuffer)
	engines := engine.New(store, events, cfg.StoreTimeout)
	cards := cache.New[models.User](cfg.CardCacheTTL, 2*cfg.CardCacheTTL)
	defer cards.Stop()
	metrics := middleware.NewMetrics()

	// ============================================================================
	// HTTP
	// ============================================================================
	app := fiber.New(fiber.Config{
		AppName: "AttendanceSystem",
		Views:   views.Engine(),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigins()}))
	app.Use(metrics.Handler())

	routes.Register(app, routes.Deps{
		Attendance:      handlers.NewAttendanceHandler(engines.Presence, store, cards, cfg.StoreTimeout),
		Cards:           handlers.NewCardHandler(store, cards, cfg.StoreTimeout),
		Transactions:    handlers.NewTransactionHandler(engines.Transactions, events, cards, cfg.StreamKeepAlive),
		Health:          handlers.NewHealthHandler(store, events, cfg.Version),
		Status:          handlers.NewStatusHandler(store.DB(), events, metrics, cards),
		Hub:             events,
		DeviceRateLimit: cfg.DeviceRateLimit,
	})

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutdown signal received, closing server...")

		// open streams only end once their viewer queues close
		events.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Error closing server: %v", err)
		}
	}()

	log.Printf("🚀 Listening on %s (%s)", cfg.HTTPAddress(), cfg.Env)
	log.Println("📍 Endpoints:")
	log.Println("   POST /api/attendance        - badge scan, toggles presence")
	log.Println("   POST /api/card              - card lookup")
	log.Println("   GET  /transactions          - debit form")
	log.Println("   POST /transactions          - debit (form or reader)")
	log.Println("   GET  /transactions/events   - live stream (SSE)")
	log.Println("   GET  /ws                    - live socket")
	log.Println("   GET  /                      - presence dashboard")

	if err := app.Listen(cfg.HTTPAddress()); err != nil {
		log.Printf("❌ listen: %v", err)
	}
	log.Println("✅ Server closed")
}
