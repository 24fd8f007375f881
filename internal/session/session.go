// Package session runs one game frame: spawn due notes, judge every lane and
// drop the notes nothing will draw again.
package session

import (
	"time"

	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/input"
	"git.lost.host/meutraa/rail/internal/schedule"
)

// DefaultRetire is how long a judged hold stays visible before it is reaped.
const DefaultRetire = 150 * time.Millisecond

type Session struct {
	Clock     *clock.Clock
	Lanes     []*schedule.Lane
	Scheduler *schedule.Scheduler

	// Retire is how long a terminal hold is kept for drawing.
	Retire time.Duration

	notes      []game.Note
	terminalAt map[*game.HoldNote]time.Duration
	frames     uint64
}

func New(c *clock.Clock, lanes []*schedule.Lane, s *schedule.Scheduler) *Session {
	return &Session{
		Clock:      c,
		Lanes:      lanes,
		Scheduler:  s,
		Retire:     DefaultRetire,
		terminalAt: map[*game.HoldNote]time.Duration{},
	}
}

// Notes returns every note that is still drawn, oldest first.
func (s *Session) Notes() []game.Note { return s.notes }

// Frames is the number of frames run so far.
func (s *Session) Frames() uint64 { return s.frames }

// Done reports whether a chart session has nothing left to spawn or draw.
func (s *Session) Done() bool {
	return s.Scheduler.Done() && len(s.notes) == 0
}

// Frame runs one frame at the clock's current time. signals is indexed by
// lane, a missing entry is an idle lane.
func (s *Session) Frame(signals []input.Signal) time.Duration {
	now := s.Clock.Now()
	s.Step(now, signals)
	return now
}

// Step runs one frame at now.
func (s *Session) Step(now time.Duration, signals []input.Signal) {
	s.frames++
	s.notes = append(s.notes, s.Scheduler.Update(now)...)

	for i, l := range s.Lanes {
		if nil == l.Judge {
			continue
		}
		var sig input.Signal
		if i < len(signals) {
			sig = signals[i]
		}
		l.Judge.Update(now, sig)
	}

	s.reap(now)
}

func (s *Session) reap(now time.Duration) {
	live := s.notes[:0]
	for _, n := range s.notes {
		if s.keep(now, n) {
			live = append(live, n)
			continue
		}
		n.Destroy()
		if h, ok := n.(*game.HoldNote); ok {
			delete(s.terminalAt, h)
		}
	}
	for i := len(live); i < len(s.notes); i++ {
		s.notes[i] = nil
	}
	s.notes = live
}

func (s *Session) keep(now time.Duration, n game.Note) bool {
	if n.Destroyed() {
		return false
	}
	if _, finished := n.Evaluate(now); finished {
		// A short despawn leg can end inside the ruin window, the note stays
		// until its judge has let go of it.
		return s.pending(n)
	}
	h, ok := n.(*game.HoldNote)
	if !ok || !h.Terminal() {
		return true
	}
	at, seen := s.terminalAt[h]
	if !seen {
		s.terminalAt[h] = now
		return true
	}
	return now-at < s.Retire
}

// pending reports whether n's lane judge still waits to judge it.
func (s *Session) pending(n game.Note) bool {
	lane := n.Lane()
	if lane < 0 || lane >= len(s.Lanes) || nil == s.Lanes[lane].Judge {
		return false
	}
	j := s.Lanes[lane].Judge
	switch n := n.(type) {
	case *game.ScheduledNote:
		for _, t := range j.Taps() {
			if t == n {
				return true
			}
		}
	case *game.HoldNote:
		return j.Hold() == n && !n.Terminal()
	}
	return false
}
