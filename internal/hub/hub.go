package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transport identifies how a viewer is attached.
type Transport string

const (
	// TransportSocket is the bidirectional websocket channel.
	TransportSocket Transport = "socket"
	// TransportStream is the one-way Server-Sent-Events channel.
	TransportStream Transport = "stream"
)

// Event is one fire-and-forget state change.
type Event struct {
	Name    string
	Payload any
}

// socketFrame is the named-event envelope sent over websockets.
type socketFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Viewer is one live dashboard connection. Its queue is closed when the
// viewer is unregistered or the hub shuts down.
type Viewer struct {
	ID          string
	Transport   Transport
	ConnectedAt time.Time

	send      chan []byte
	closeOnce sync.Once
}

// Messages returns the viewer's outbound queue of encoded frames.
func (v *Viewer) Messages() <-chan []byte {
	return v.send
}

func (v *Viewer) close() {
	v.closeOnce.Do(func() { close(v.send) })
}

// Hub keeps the set of connected viewers and fans events out to them.
type Hub struct {
	mu         sync.Mutex
	viewers    map[*Viewer]struct{}
	bufferSize int
	closed     bool
	dropped    uint64
}

// New creates a hub whose viewers each buffer up to bufferSize frames.
func New(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Hub{
		viewers:    make(map[*Viewer]struct{}),
		bufferSize: bufferSize,
	}
}

// Register attaches a new viewer. After Close the returned viewer's queue is
// already closed.
func (h *Hub) Register(t Transport) *Viewer {
	v := &Viewer{
		ID:          uuid.NewString(),
		Transport:   t,
		ConnectedAt: time.Now(),
		send:        make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		v.close()
		return v
	}
	h.viewers[v] = struct{}{}
	log.Printf("🔌 [HUB] viewer %s connected (%s). Total viewers: %d", v.ID, t, len(h.viewers))
	return v
}

// Unregister detaches a viewer and closes its queue. Nil viewers, viewers
// already removed and viewers of another hub are ignored.
func (h *Hub) Unregister(v *Viewer) {
	if v == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.viewers[v]
	if ok {
		delete(h.viewers, v)
	}
	total := len(h.viewers)
	h.mu.Unlock()

	if ok {
		v.close()
		log.Printf("🔌 [HUB] viewer %s disconnected (%s). Total viewers: %d", v.ID, v.Transport, total)
	}
}

// Broadcast enqueues the event to every registered viewer and returns how
// many viewers accepted it. The hub lock is held for the whole fan-out so all
// viewers observe broadcasts in the same order. A viewer whose queue is full
// misses this event; nobody else waits for it.
func (h *Hub) Broadcast(e Event) int {
	stream, err := json.Marshal(e.Payload)
	if err != nil {
		log.Printf("❌ [HUB] encode %s payload: %v", e.Name, err)
		return 0
	}
	socket, err := json.Marshal(socketFrame{Event: e.Name, Data: json.RawMessage(stream)})
	if err != nil {
		log.Printf("❌ [HUB] encode %s frame: %v", e.Name, err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for v := range h.viewers {
		frame := stream
		if v.Transport == TransportSocket {
			frame = socket
		}
		select {
		case v.send <- frame:
			delivered++
		default:
			h.dropped++
			log.Printf("⚠️  [HUB] viewer %s queue full, dropping %s", v.ID, e.Name)
		}
	}
	return delivered
}

// Stats is a snapshot of the registry.
type Stats struct {
	Socket  int    `json:"socket"`
	Stream  int    `json:"stream"`
	Dropped uint64 `json:"dropped"`
}

// Stats counts viewers per transport.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{Dropped: h.dropped}
	for v := range h.viewers {
		switch v.Transport {
		case TransportSocket:
			s.Socket++
		case TransportStream:
			s.Stream++
		}
	}
	return s
}

// Close detaches every viewer and refuses new ones. Writers drain and exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for v := range h.viewers {
		v.close()
		delete(h.viewers, v)
	}
	log.Printf("🛑 [HUB] closed")
}
