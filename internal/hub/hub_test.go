package hub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presence struct {
	ID        int64 `json:"id"`
	IsPresent bool  `json:"is_present"`
}

func receive(t *testing.T, v *Viewer) []byte {
	t.Helper()
	select {
	case frame, ok := <-v.Messages():
		require.True(t, ok, "viewer queue closed")
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func assertEmpty(t *testing.T, v *Viewer) {
	t.Helper()
	select {
	case frame := <-v.Messages():
		t.Fatalf("unexpected frame %s", frame)
	default:
	}
}

func TestBroadcastReachesBothTransports(t *testing.T) {
	h := New(8)
	socket := h.Register(TransportSocket)
	stream := h.Register(TransportStream)

	n := h.Broadcast(Event{Name: "attendanceUpdate", Payload: presence{ID: 7, IsPresent: true}})
	assert.Equal(t, 2, n)

	var frame struct {
		Event string   `json:"event"`
		Data  presence `json:"data"`
	}
	require.NoError(t, json.Unmarshal(receive(t, socket), &frame))
	assert.Equal(t, "attendanceUpdate", frame.Event)
	assert.Equal(t, presence{ID: 7, IsPresent: true}, frame.Data)

	assert.JSONEq(t, `{"id":7,"is_present":true}`, string(receive(t, stream)))
}

func TestLateViewerDoesNotSeePastEvents(t *testing.T) {
	h := New(8)
	early := h.Register(TransportStream)

	h.Broadcast(Event{Name: "attendanceUpdate", Payload: presence{ID: 1}})
	late := h.Register(TransportStream)

	assert.JSONEq(t, `{"id":1,"is_present":false}`, string(receive(t, early)))
	assertEmpty(t, late)
}

func TestBroadcastOrderIsPreservedPerViewer(t *testing.T) {
	h := New(128)
	viewers := []*Viewer{h.Register(TransportStream), h.Register(TransportStream), h.Register(TransportSocket)}

	for i := 0; i < 100; i++ {
		h.Broadcast(Event{Name: "tick", Payload: i})
	}

	for _, v := range viewers {
		for i := 0; i < 100; i++ {
			frame := receive(t, v)
			if v.Transport == TransportSocket {
				var env struct {
					Data int `json:"data"`
				}
				require.NoError(t, json.Unmarshal(frame, &env))
				assert.Equal(t, i, env.Data)
				continue
			}
			assert.Equal(t, itoa(i), string(frame))
		}
	}
}

func TestConcurrentBroadcastsKeepOneGlobalOrder(t *testing.T) {
	h := New(1024)
	a := h.Register(TransportStream)
	b := h.Register(TransportStream)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				h.Broadcast(Event{Name: "tick", Payload: g*1000 + i})
			}
		}(g)
	}
	wg.Wait()

	for i := 0; i < 400; i++ {
		assert.Equal(t, string(receive(t, a)), string(receive(t, b)))
	}
}

func TestSlowViewerDoesNotBlockOthers(t *testing.T) {
	h := New(2)
	slow := h.Register(TransportStream)
	fast := h.Register(TransportStream)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			h.Broadcast(Event{Name: "tick", Payload: i})
			// fast reads every frame, slow never reads
			<-fast.Messages()
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow viewer")
	}
	assert.Len(t, slow.Messages(), 2)
	assert.Equal(t, uint64(3), h.Stats().Dropped)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := New(4)
	v := h.Register(TransportSocket)

	h.Unregister(v)
	h.Unregister(v)
	h.Unregister(nil)
	h.Unregister(&Viewer{send: make(chan []byte)})

	_, ok := <-v.Messages()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Broadcast(Event{Name: "x", Payload: 1}))
	assert.Equal(t, Stats{}, h.Stats())
}

func TestUnregisterIgnoresViewersOfAnotherHub(t *testing.T) {
	owner := New(4)
	other := New(4)
	v := owner.Register(TransportStream)

	other.Unregister(v)

	require.NotPanics(t, func() {
		assert.Equal(t, 1, owner.Broadcast(Event{Name: "x", Payload: 1}))
	})
	assert.Equal(t, "1", string(<-v.Messages()))
	assert.Equal(t, Stats{Stream: 1}, owner.Stats())
}

func TestStats(t *testing.T) {
	h := New(4)
	h.Register(TransportSocket)
	h.Register(TransportStream)
	h.Register(TransportStream)

	assert.Equal(t, Stats{Socket: 1, Stream: 2}, h.Stats())
}

func TestCloseDetachesEveryone(t *testing.T) {
	h := New(4)
	v := h.Register(TransportStream)

	h.Close()
	h.Close()

	_, ok := <-v.Messages()
	assert.False(t, ok)

	after := h.Register(TransportSocket)
	_, ok = <-after.Messages()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Broadcast(Event{Name: "x", Payload: 1}))
}

func TestBroadcastUnencodablePayload(t *testing.T) {
	h := New(4)
	v := h.Register(TransportStream)

	assert.Equal(t, 0, h.Broadcast(Event{Name: "bad", Payload: make(chan int)}))
	assertEmpty(t, v)
}

func itoa(i int) string {
	raw, _ := json.Marshal(i)
	return string(raw)
}
