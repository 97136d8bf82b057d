package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
)

// CardHandler answers "does this card belong to someone" for the reader.
type CardHandler struct {
	store   storage.Store
	cards   *cache.Cache[models.User]
	timeout time.Duration
}

func NewCardHandler(store storage.Store, cards *cache.Cache[models.User], timeout time.Duration) *CardHandler {
	return &CardHandler{store: store, cards: cards, timeout: timeout}
}

// Check handles POST /api/card.
func (h *CardHandler) Check(c *fiber.Ctx) error {
	var req models.CardCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "UID missing"})
	}

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "UID missing"})
	}

	if user, ok := h.cards.Get(uid); ok {
		return c.JSON(fiber.Map{"message": "UID found", "user": user})
	}

	// a toggle or debit landing during the read bumps the generation
	gen := h.cards.Generation(uid)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	user, err := h.store.FindUserByBadge(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "UID not found"})
	}
	if err != nil {
		log.Printf("❌ [CARD] lookup %s: %v", uid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}

	h.cards.SetIfGeneration(uid, user, gen)
	return c.JSON(fiber.Map{"message": "UID found", "user": user})
}
