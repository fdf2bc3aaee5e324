package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersPlaced  atomic.Uint64
	triggersFired atomic.Uint64
	watcherErrors atomic.Uint64
	feedRefreshes atomic.Uint64
	snapshots     atomic.Uint64

	// Gauges
	activeWatchers atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderPlaced counts an order that reached pending state.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordTriggerFired counts a stop / stop-limit activation.
func (m *Metrics) RecordTriggerFired() {
	m.triggersFired.Add(1)
}

// RecordWatcherError counts a trigger watcher that died on an error.
func (m *Metrics) RecordWatcherError() {
	m.watcherErrors.Add(1)
}

// RecordFeedRefresh counts a published price snapshot.
func (m *Metrics) RecordFeedRefresh() {
	m.feedRefreshes.Add(1)
}

// RecordSnapshot counts a served market-data snapshot.
func (m *Metrics) RecordSnapshot() {
	m.snapshots.Add(1)
}

// IncrementWatchers increments the active trigger-watcher gauge.
func (m *Metrics) IncrementWatchers() {
	m.activeWatchers.Add(1)
}

// DecrementWatchers decrements the active trigger-watcher gauge.
func (m *Metrics) DecrementWatchers() {
	m.activeWatchers.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersPlaced   uint64
	TriggersFired  uint64
	WatcherErrors  uint64
	FeedRefreshes  uint64
	Snapshots      uint64
	ActiveWatchers int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersPlaced:   m.ordersPlaced.Load(),
		TriggersFired:  m.triggersFired.Load(),
		WatcherErrors:  m.watcherErrors.Load(),
		FeedRefreshes:  m.feedRefreshes.Load(),
		Snapshots:      m.snapshots.Load(),
		ActiveWatchers: m.activeWatchers.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersPlaced.Store(0)
	m.triggersFired.Store(0)
	m.watcherErrors.Store(0)
	m.feedRefreshes.Store(0)
	m.snapshots.Store(0)
	m.activeWatchers.Store(0)
}
