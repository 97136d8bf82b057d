package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/middleware"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
)

// StatusHandler reports process, database and hub state for operators.
type StatusHandler struct {
	db        *sql.DB
	hub       *hub.Hub
	metrics   *middleware.Metrics
	cards     *cache.Cache[models.User]
	startTime time.Time
}

func NewStatusHandler(db *sql.DB, h *hub.Hub, metrics *middleware.Metrics, cards *cache.Cache[models.User]) *StatusHandler {
	return &StatusHandler{db: db, hub: h, metrics: metrics, cards: cards, startTime: time.Now()}
}

// SystemStatus is the body of GET /api/status.
type SystemStatus struct {
	Backend  BackendStatus              `json:"backend"`
	Database DatabaseStatus             `json:"database"`
	Viewers  hub.Stats                  `json:"viewers"`
	Requests middleware.MetricsSnapshot `json:"requests"`
	Cards    cache.Stats                `json:"card_cache"`
}

type BackendStatus struct {
	Status string `json:"status"`
	Uptime int64  `json:"uptime"`
}

type DatabaseStatus struct {
	Status         string `json:"status"`
	Connections    int    `json:"connections"`
	Idle           int    `json:"idle"`
	MaxConnections int    `json:"maxConnections"`
}

func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	status := SystemStatus{
		Backend: BackendStatus{
			Status: "online",
			Uptime: int64(time.Since(h.startTime).Seconds()),
		},
		Database: DatabaseStatus{Status: "offline"},
		Viewers:  h.hub.Stats(),
		Requests: h.metrics.Snapshot(),
		Cards:    h.cards.Stats(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err == nil {
			stats := h.db.Stats()
			status.Database = DatabaseStatus{
				Status:         "online",
				Connections:    stats.InUse,
				Idle:           stats.Idle,
				MaxConnections: stats.MaxOpenConnections,
			}
		}
	}

	return c.JSON(status)
}
