package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/handlers"
	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/middleware"
)

// Deps are the handlers and shared pieces the routes are bound to.
type Deps struct {
	Attendance      *handlers.AttendanceHandler
	Cards           *handlers.CardHandler
	Transactions    *handlers.TransactionHandler
	Health          *handlers.HealthHandler
	Status          *handlers.StatusHandler
	Hub             *hub.Hub
	DeviceRateLimit int
}

func Register(app *fiber.App, d Deps) {
	device := middleware.DeviceRateLimiter(d.DeviceRateLimit)

	// ============================================================================
	// API (reader + operators)
	// ============================================================================
	api := app.Group("/api")
	api.Get("/health", d.Health.Health)
	api.Get("/status", d.Status.GetStatus)
	api.Post("/attendance", device, d.Attendance.Scan)
	api.Post("/card", device, d.Cards.Check)

	// ============================================================================
	// TRANSACTIONS (form, reader debits, live stream)
	// ============================================================================
	app.Get("/transactions", d.Transactions.Form)
	app.Post("/transactions", device, d.Transactions.Submit)
	app.Get("/transactions/events", middleware.ViewerRateLimiter(), d.Transactions.Events)

	// ============================================================================
	// DASHBOARD
	// ============================================================================
	app.Get("/", d.Attendance.Dashboard)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", middleware.ViewerRateLimiter(), websocket.New(handlers.Socket(d.Hub)))
}
