package handlers

import (
	"github.com/gofiber/websocket/v2"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
)

// Socket attaches a websocket dashboard to the hub until either side leaves.
func Socket(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		h.ServeSocket(c)
	}
}
