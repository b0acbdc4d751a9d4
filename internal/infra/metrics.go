package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed atomic.Uint64
	tradesObserved  atomic.Uint64
	parseErrors     atomic.Uint64
	reconnects      atomic.Uint64
	staleHeartbeats atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records one classified order event.
func (m *Metrics) RecordEvent() {
	m.eventsProcessed.Add(1)
}

// RecordTrade records one observed market trade.
func (m *Metrics) RecordTrade() {
	m.tradesObserved.Add(1)
}

// RecordParseError records a dropped undecodable payload.
func (m *Metrics) RecordParseError() {
	m.parseErrors.Add(1)
}

// RecordReconnect records a stream reconnect.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Add(1)
}

// RecordStaleHeartbeat records a heartbeat staleness trip.
func (m *Metrics) RecordStaleHeartbeat() {
	m.staleHeartbeats.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed   uint64
	TradesObserved    uint64
	ParseErrors       uint64
	Reconnects        uint64
	StaleHeartbeats   uint64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsProcessed:   m.eventsProcessed.Load(),
		TradesObserved:    m.tradesObserved.Load(),
		ParseErrors:       m.parseErrors.Load(),
		Reconnects:        m.reconnects.Load(),
		StaleHeartbeats:   m.staleHeartbeats.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.tradesObserved.Store(0)
	m.parseErrors.Store(0)
	m.reconnects.Store(0)
	m.staleHeartbeats.Store(0)
	m.activeConnections.Store(0)
}
