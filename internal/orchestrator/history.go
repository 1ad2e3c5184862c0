package orchestrator

import (
	"sync"
	"time"
)

// DefaultMaxHistory bounds the run history when no explicit cap is
// configured.
const DefaultMaxHistory = 100

// RunRecord summarizes one completed query flow.
type RunRecord struct {
	SessionID       string    `json:"session_id"`
	Query           string    `json:"query"`
	AgentKind       string    `json:"agent_kind"`
	Action          string    `json:"action"`
	AgentID         string    `json:"agent_id"`
	Status          string    `json:"status"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// runHistory is a bounded FIFO of run records; the oldest entry is evicted
// past capacity.
type runHistory struct {
	mu      sync.Mutex
	records []RunRecord
	max     int
}

func newRunHistory(max int) *runHistory {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &runHistory{max: max}
}

// Append records one run, evicting the oldest entry if at capacity.
func (h *runHistory) Append(record RunRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, record)
	if len(h.records) > h.max {
		h.records = h.records[1:]
	}
}

// Snapshot returns up to limit records, most recent first.
func (h *runHistory) Snapshot(limit int) []RunRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.records) {
		limit = len(h.records)
	}

	out := make([]RunRecord, 0, limit)
	for i := len(h.records) - 1; i >= len(h.records)-limit; i-- {
		out = append(out, h.records[i])
	}
	return out
}
