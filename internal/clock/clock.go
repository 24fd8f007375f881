// Package clock maps musical beats onto the audio output time domain.
//
// Every instant handed around the game is a time.Duration measured from the
// origin of a Source. Scheduling and judgement both read the same Source, so
// judgement deltas never mix audio time with frame time.
package clock

import (
	"errors"
	"math"
	"time"
)

// ErrBPM is returned by New when the tempo is not positive.
var ErrBPM = errors.New("bpm must be greater than zero")

// Source is a monotonic audio-domain time source.
type Source interface {
	Now() time.Duration
}

// Clock maps beats to instants for a fixed BPM.
type Clock struct {
	src   Source
	bpm   float64
	start time.Duration

	started bool
}

func New(src Source, bpm float64) (*Clock, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, ErrBPM
	}
	return &Clock{src: src, bpm: bpm}, nil
}

// Now reads the underlying source.
func (c *Clock) Now() time.Duration {
	return c.src.Now()
}

// Start records the session start as the current instant. Only the first
// call has any effect.
func (c *Clock) Start() {
	c.StartAt(c.src.Now())
}

// StartAt records an explicit session start instant, used when beat zero is
// offset from the moment audio began. Only the first call has any effect.
func (c *Clock) StartAt(instant time.Duration) {
	if c.started {
		return
	}
	c.start = instant
	c.started = true
}

func (c *Clock) Started() bool {
	return c.started
}

func (c *Clock) BPM() float64 {
	return c.bpm
}

// SecondsPerBeat is 60/bpm.
func (c *Clock) SecondsPerBeat() float64 {
	return 60.0 / c.bpm
}

// BeatDuration is the length of one beat.
func (c *Clock) BeatDuration() time.Duration {
	return Seconds(c.SecondsPerBeat())
}

// SessionStart is zero until the session has started.
func (c *Clock) SessionStart() time.Duration {
	return c.start
}

// SongTime is the time elapsed since the session start, never negative.
func (c *Clock) SongTime(now time.Duration) time.Duration {
	if !c.started {
		return 0
	}
	t := now - c.start
	if t < 0 {
		return 0
	}
	return t
}

// CurrentBeat is the beat position of now.
func (c *Clock) CurrentBeat(now time.Duration) float64 {
	return c.SongTime(now).Seconds() / c.SecondsPerBeat()
}

// InstantAtBeat is the audio instant of beat. Before the session has started
// there is no anchor, so the current instant is returned.
func (c *Clock) InstantAtBeat(beat float64) time.Duration {
	if !c.started {
		return c.src.Now()
	}
	if beat < 0 {
		beat = 0
	}
	return c.start + Seconds(beat*c.SecondsPerBeat())
}

// Seconds converts floating point seconds to a Duration, rounding to the
// nearest nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
