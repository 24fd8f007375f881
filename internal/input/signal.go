// Package input turns key devices into the per-lane, per-frame signal the
// judges consume. Device readers run on their own goroutines and only push
// raw events into a Sampler; the frame loop samples once per frame.
package input

import "log"

// Signal is the state of one lane's key for one frame.
type Signal struct {
	Pressed  bool // went down since the previous frame
	Held     bool // is down now
	Released bool // went up since the previous frame
}

// Event is a raw key transition from a device.
type Event struct {
	Lane int
	Down bool
}

// Sampler collects events between frames.
type Sampler struct {
	events chan Event
	held   []bool
}

func NewSampler(lanes, buffer int) *Sampler {
	return &Sampler{
		events: make(chan Event, buffer),
		held:   make([]bool, lanes),
	}
}

func (s *Sampler) Lanes() int {
	return len(s.held)
}

// Push queues an event without blocking. Events that do not fit in the
// buffer are dropped.
func (s *Sampler) Push(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		log.Println("input buffer full, dropping event for lane", ev.Lane)
		return false
	}
}

// Sample drains every queued event and returns one Signal per lane. A lane
// reports at most one press per frame, further presses are dropped. A down
// event for a lane that is already held is a repeat, not a press.
func (s *Sampler) Sample() []Signal {
	signals := make([]Signal, len(s.held))
	for {
		select {
		case ev := <-s.events:
			s.apply(signals, ev)
		default:
			for i := range signals {
				signals[i].Held = s.held[i]
			}
			return signals
		}
	}
}

func (s *Sampler) apply(signals []Signal, ev Event) {
	if ev.Lane < 0 || ev.Lane >= len(s.held) {
		return
	}
	if ev.Down {
		if !s.held[ev.Lane] {
			signals[ev.Lane].Pressed = true
		}
		s.held[ev.Lane] = true
		return
	}
	if s.held[ev.Lane] {
		signals[ev.Lane].Released = true
	}
	s.held[ev.Lane] = false
}
