package hub

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
)

const socketWriteWait = 10 * time.Second

// SocketConn is the subset of *websocket.Conn the hub needs.
type SocketConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ServeSocket registers conn as a socket viewer and blocks until the peer
// goes away or the hub closes. Incoming client messages are discarded.
func (h *Hub) ServeSocket(conn SocketConn) {
	v := h.Register(TransportSocket)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// closing the conn unblocks the read loop below
		defer conn.Close()
		for frame := range v.Messages() {
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("⚠️  [HUB] write to viewer %s failed: %v", v.ID, err)
				h.Unregister(v)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.Unregister(v)
	<-done
}
