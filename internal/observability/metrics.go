package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Metrics keeps in-process per-route counters. The health stats endpoint
// reads them through Snapshot.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	latency  map[string]time.Duration
	errors   map[string]int64
}

// NewMetrics initializes the counter maps.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		latency:  make(map[string]time.Duration),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts one handled request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey(method, path, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.latency[key] += duration
}

// RecordError counts one failed request under its domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := routeKey(method, path, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// RouteStats is one route's aggregated view.
type RouteStats struct {
	Requests     int64   `json:"requests"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Snapshot copies the counters for reporting.
func (m *Metrics) Snapshot() (map[string]RouteStats, map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := make(map[string]RouteStats, len(m.requests))
	for key, count := range m.requests {
		requests[key] = RouteStats{
			Requests:     count,
			AvgLatencyMs: float64(m.latency[key].Milliseconds()) / float64(count),
		}
	}
	errors := make(map[string]int64, len(m.errors))
	for key, count := range m.errors {
		errors[key] = count
	}
	return requests, errors
}

// RequestLogger logs each handled request and feeds the counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		metrics.RecordRequest(c.Path(), c.Method(), status, duration)
		logger.Info("request handled",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration))
		return err
	}
}

func routeKey(parts ...string) string {
	return strings.Join(parts, " ")
}
