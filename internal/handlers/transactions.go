package handlers

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/cache"
	"github.com/Patch-lnd/AttendanceSystem/internal/engine"
	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
)

// TransactionHandler serves the debit form, debit submissions from both the
// form and the reader, and the live transaction stream.
type TransactionHandler struct {
	transactions *engine.TransactionEngine
	hub          *hub.Hub
	cards        *cache.Cache[models.User]
	keepAlive    time.Duration
}

func NewTransactionHandler(transactions *engine.TransactionEngine, h *hub.Hub, cards *cache.Cache[models.User], keepAlive time.Duration) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, hub: h, cards: cards, keepAlive: keepAlive}
}

// Form renders GET /transactions, optionally prefilled from the query string.
func (h *TransactionHandler) Form(c *fiber.Ctx) error {
	view := engine.FormView(
		c.Query("status"),
		c.Query("message"),
		c.Query("card_uid"),
		c.Query("pin"),
		c.Query("amount"),
	)
	return h.render(c, view)
}

// Submit handles POST /transactions. Readers get JSON, browsers the form.
func (h *TransactionHandler) Submit(c *fiber.Ctx) error {
	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		// an unreadable body still gets a reply in the caller's shape
		req = models.TransactionRequest{From: c.Query("from")}
	}
	origin := engine.ParseOrigin(req.From)

	receipt, err := h.transactions.Debit(c.UserContext(), engine.DebitRequest{
		CardUID: req.CardUID,
		PIN:     req.PIN.String(),
		Amount:  req.Amount.String(),
		Origin:  origin,
	})
	if err == nil {
		h.cards.Delete(receipt.User.RFIDUID)
	}

	reply := engine.ReplyFor(origin, receipt, err)
	if reply.Device != nil {
		return c.JSON(reply.Device)
	}
	return h.render(c, *reply.View)
}

// Events streams transaction updates as Server-Sent-Events.
func (h *TransactionHandler) Events(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// registered before returning so no broadcast after this point is missed
	v := h.hub.Register(hub.TransportStream)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		h.hub.ServeStream(w, v, h.keepAlive)
	})
	return nil
}

func (h *TransactionHandler) render(c *fiber.Ctx, view engine.ViewReply) error {
	return c.Render("transactions", fiber.Map{
		"Message":  view.Message,
		"AutoFill": view.AutoFill,
	})
}
