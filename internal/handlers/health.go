package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Viewers   hub.Stats         `json:"viewers"`
	Version   string            `json:"version,omitempty"`
}

type HealthHandler struct {
	store   storage.Store
	hub     *hub.Hub
	version string
}

func NewHealthHandler(store storage.Store, h *hub.Hub, version string) *HealthHandler {
	return &HealthHandler{store: store, hub: h, version: version}
}

// Health pings the database and reports live viewer counts.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		services["database"] = "unhealthy: " + err.Error()
		overall = "degraded"
	} else {
		services["database"] = "healthy"
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Viewers:   h.hub.Stats(),
		Version:   h.version,
	})
}
