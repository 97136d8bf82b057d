package hub

import (
	"bufio"
	"time"
)

// ServeStream writes the viewer's frames as Server-Sent-Events until the
// queue closes or a write fails, then unregisters the viewer. Keep-alive
// comments surface dead peers as write errors.
func (h *Hub) ServeStream(w *bufio.Writer, v *Viewer, keepAlive time.Duration) {
	defer h.Unregister(v)

	if err := writeComment(w, "connected"); err != nil {
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-v.Messages():
			if !ok {
				return
			}
			if err := writeData(w, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := writeComment(w, "ping"); err != nil {
				return
			}
		}
	}
}

func writeData(w *bufio.Writer, frame []byte) error {
	if _, err := w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := w.WriteString(": " + text + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
