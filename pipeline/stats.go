package pipeline

import (
	"sync"
	"time"
)

// Stats counts processed frames per output mode. It backs the health
// endpoint so an operator can see whether the pipeline is actually active
// or stuck in a degraded mode.
type Stats struct {
	mu      sync.Mutex
	started time.Time
	total   int64
	byMode  map[Mode]int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	UptimeSeconds float64          `json:"uptime_seconds"`
	TotalFrames   int64            `json:"total_frames"`
	FramesPerSec  float64          `json:"frames_per_sec"`
	ByMode        map[string]int64 `json:"frames_by_mode"`
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{
		started: time.Now(),
		byMode:  make(map[Mode]int64),
	}
}

// Record counts one frame in the given mode.
func (s *Stats) Record(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byMode[mode]++
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := time.Since(s.started).Seconds()
	snap := StatsSnapshot{
		UptimeSeconds: uptime,
		TotalFrames:   s.total,
		ByMode:        make(map[string]int64, len(s.byMode)),
	}
	if uptime > 0 {
		snap.FramesPerSec = float64(s.total) / uptime
	}
	for mode, n := range s.byMode {
		snap.ByMode[mode.String()] = n
	}
	return snap
}
