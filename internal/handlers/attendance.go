package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/engine"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// AttendanceHandler serves badge scans and the presence dashboard.
type AttendanceHandler struct {
	presence *engine.PresenceEngine
	store    storage.Store
	cards    *cache.Cache[models.User]
	timeout  time.Duration
}

func NewAttendanceHandler(presence *engine.PresenceEngine, store storage.Store, cards *cache.Cache[models.User], timeout time.Duration) *AttendanceHandler {
	return &AttendanceHandler{presence: presence, store: store, cards: cards, timeout: timeout}
}

// Scan handles POST /api/attendance.
func (h *AttendanceHandler) Scan(c *fiber.Ctx) error {
	var req models.AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": engine.MsgBadgeMissing,
		})
	}

	res, err := h.presence.Toggle(c.UserContext(), req.RFIDUID)
	if err != nil {
		return c.Status(statusFor(engine.KindOf(err))).JSON(fiber.Map{
			"status":  "error",
			"message": engine.MessageOf(err),
		})
	}
	h.cards.Delete(res.User.RFIDUID)

	return c.JSON(fiber.Map{
		"status": "success",
		"user":   res.User.DTO(),
	})
}

// Dashboard renders every user with their current presence.
func (h *AttendanceHandler) Dashboard(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		log.Printf("❌ [DASHBOARD] list users: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading dashboard")
	}

	return c.Render("dashboard", fiber.Map{"Users": users})
}
