// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Character volume (only for model operations)
	TotalPromptChars   int64
	TotalResponseChars int64
	MinPromptChars     int64
	MaxPromptChars     int64
	MinResponseChars   int64
	MaxResponseChars   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// Volume stats (nil if not applicable)
	TotalPromptChars   *int64
	TotalResponseChars *int64
	AvgPromptChars     *float64
	AvgResponseChars   *float64
}

// Snapshot represents full engine statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	ModelCall     *OperationSnapshot
	QuestGen      *OperationSnapshot
	Retrieval     *OperationSnapshot
	Extraction    *OperationSnapshot
	Turn          *OperationSnapshot
}

// Operation names for the collector.
const (
	OpModelCall  = "model_call"
	OpQuestGen   = "quest_gen"
	OpRetrieval  = "retrieval"
	OpExtraction = "extraction"
	OpTurn       = "turn"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:          time.Duration(math.MaxInt64),
			MinPromptChars:   math.MaxInt64,
			MinResponseChars: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordModelUsage records timing and prompt/response volume for a model
// operation.
func (c *Collector) RecordModelUsage(op string, duration time.Duration, promptChars, responseChars int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	m.TotalPromptChars += promptChars
	m.TotalResponseChars += responseChars

	if promptChars < m.MinPromptChars {
		m.MinPromptChars = promptChars
	}
	if promptChars > m.MaxPromptChars {
		m.MaxPromptChars = promptChars
	}
	if responseChars < m.MinResponseChars {
		m.MinResponseChars = responseChars
	}
	if responseChars > m.MaxResponseChars {
		m.MaxResponseChars = responseChars
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeVolume bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeVolume && (m.TotalPromptChars > 0 || m.TotalResponseChars > 0) {
		totalIn := m.TotalPromptChars
		totalOut := m.TotalResponseChars
		avgIn := float64(m.TotalPromptChars) / float64(m.Count)
		avgOut := float64(m.TotalResponseChars) / float64(m.Count)

		snap.TotalPromptChars = &totalIn
		snap.TotalResponseChars = &totalOut
		snap.AvgPromptChars = &avgIn
		snap.AvgResponseChars = &avgOut
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		ModelCall:     snapshotOp(c.ops[OpModelCall], true),
		QuestGen:      snapshotOp(c.ops[OpQuestGen], true),
		Retrieval:     snapshotOp(c.ops[OpRetrieval], false),
		Extraction:    snapshotOp(c.ops[OpExtraction], false),
		Turn:          snapshotOp(c.ops[OpTurn], false),
	}
}
