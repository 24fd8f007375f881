package clock

import (
	"sync"
	"time"
)

// WallSource is a Source backed by the monotonic wall clock, for sessions
// without an audio device.
type WallSource struct {
	origin time.Time
}

func NewWallSource() *WallSource {
	return &WallSource{origin: time.Now()}
}

func (s *WallSource) Now() time.Duration {
	return time.Since(s.origin)
}

// ManualSource is a manually advanced Source for tests and replays.
type ManualSource struct {
	mu  sync.Mutex
	now time.Duration
}

func NewManualSource(now time.Duration) *ManualSource {
	return &ManualSource{now: now}
}

func (s *ManualSource) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Set moves the source to t. Moving backwards is ignored so the source stays
// monotonic.
func (s *ManualSource) Set(t time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t > s.now {
		s.now = t
	}
}

// Advance moves the source forward by d.
func (s *ManualSource) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
}
