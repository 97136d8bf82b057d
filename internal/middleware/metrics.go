package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Metrics counts requests by status class. Reads are lock free.
type Metrics struct {
	total       atomic.Uint64
	clientError atomic.Uint64
	serverError atomic.Uint64
	totalNanos  atomic.Int64
}

// MetricsSnapshot is what /api/status reports.
type MetricsSnapshot struct {
	Requests      uint64  `json:"requests"`
	ClientErrors  uint64  `json:"client_errors"`
	ServerErrors  uint64  `json:"server_errors"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

func NewMetrics() *Metrics { return &Metrics{} }

// Handler records every request that passes through it.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		m.total.Add(1)
		m.totalNanos.Add(int64(time.Since(start)))
		switch {
		case status >= 500:
			m.serverError.Add(1)
		case status >= 400:
			m.clientError.Add(1)
		}
		return err
	}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	total := m.total.Load()
	snap := MetricsSnapshot{
		Requests:     total,
		ClientErrors: m.clientError.Load(),
		ServerErrors: m.serverError.Load(),
	}
	if total > 0 {
		snap.AvgDurationMS = float64(m.totalNanos.Load()) / float64(total) / float64(time.Millisecond)
	}
	return snap
}
