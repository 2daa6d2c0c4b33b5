package telemetry

import (
	"sync"

	"switchd/pkg/types"
)

// defaultHistorySize bounds the in-memory time series when no capacity is
// configured.
const defaultHistorySize = 50

// History is a bounded, append-only time series of snapshots. When full,
// the oldest snapshot is evicted before the new one is added (strict FIFO).
// The collector's poll loop is the single writer; readers get copies.
type History struct {
	mu  sync.RWMutex
	buf []types.Snapshot
	cap int
}

// NewHistory builds a buffer holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistorySize
	}
	return &History{
		buf: make([]types.Snapshot, 0, capacity),
		cap: capacity,
	}
}

// Append adds a snapshot, evicting the oldest entry at capacity.
func (h *History) Append(s types.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) >= h.cap {
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:len(h.buf)-1]
	}
	h.buf = append(h.buf, s)
}

// Snapshots returns the held snapshots oldest-first as a copy.
func (h *History) Snapshots() []types.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]types.Snapshot, len(h.buf))
	copy(out, h.buf)
	return out
}

// Len reports how many snapshots are currently held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buf)
}

// Averages computes arithmetic means over the currently held snapshots.
// An empty buffer yields the zero value rather than dividing by zero.
func (h *History) Averages() types.Averages {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.buf) == 0 {
		return types.Averages{}
	}
	var util, mem, temp, tps float64
	for _, s := range h.buf {
		util += float64(s.UtilizationPct)
		mem += float64(s.MemoryUsedBytes)
		temp += float64(s.TemperatureC)
		tps += s.TokensPerSec
	}
	n := float64(len(h.buf))
	return types.Averages{
		UtilizationPct:  util / n,
		MemoryUsedBytes: mem / n,
		TemperatureC:    temp / n,
		TokensPerSec:    tps / n,
	}
}
