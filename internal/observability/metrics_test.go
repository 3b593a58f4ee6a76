package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAveragesLatency(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/sites/site-1/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/sites/site-1/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/sites/site-1/tickets", "POST", 201, 50*time.Millisecond)

	requests, errors := m.Snapshot()
	require.Len(t, requests, 2)
	assert.Empty(t, errors)

	list := requests["GET /sites/site-1/tickets 200"]
	assert.Equal(t, int64(2), list.Requests)
	assert.Equal(t, 20.0, list.AvgLatencyMs)
}

func TestRecordErrorCountsByCode(t *testing.T) {
	m := NewMetrics()
	m.RecordError("/sites/site-1/tickets", "POST", "VALIDATION_FAILED")
	m.RecordError("/sites/site-1/tickets", "POST", "VALIDATION_FAILED")

	_, errors := m.Snapshot()
	assert.Equal(t, int64(2), errors["POST /sites/site-1/tickets VALIDATION_FAILED"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
}
