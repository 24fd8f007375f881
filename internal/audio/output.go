// Package audio plays the song and measures time by what the speaker has
// consumed.
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output mixes everything sent to the speaker and counts the samples it
// hands over. It implements clock.Source: Now is the sample position minus
// one buffer of latency, interpolated with the wall clock between buffer
// fills and never moving backwards.
type Output struct {
	rate   beep.SampleRate
	buffer time.Duration
	wall   func() time.Time

	mu    sync.Mutex // guards mixer
	mixer beep.Mixer

	played atomic.Int64 // samples streamed so far

	nowMu   sync.Mutex
	seen    int64
	seenAt  time.Time
	chunk   time.Duration
	last    time.Duration
	started bool
}

// Open initialises the speaker at rate with a buffer of the given length
// and starts streaming silence.
func Open(rate beep.SampleRate, buffer time.Duration) (*Output, error) {
	o := newOutput(rate, buffer, time.Now)
	if err := speaker.Init(rate, rate.N(buffer)); nil != err {
		return nil, err
	}
	speaker.Play(o)
	return o, nil
}

func newOutput(rate beep.SampleRate, buffer time.Duration, wall func() time.Time) *Output {
	return &Output{rate: rate, buffer: buffer, wall: wall}
}

func (o *Output) Rate() beep.SampleRate { return o.rate }

// Play mixes s into the output from the next buffer on.
func (o *Output) Play(s ...beep.Streamer) {
	o.mu.Lock()
	o.mixer.Add(s...)
	o.mu.Unlock()
}

// Stream is called by the speaker. It never drains.
func (o *Output) Stream(samples [][2]float64) (int, bool) {
	o.mu.Lock()
	n, _ := o.mixer.Stream(samples)
	o.mu.Unlock()
	if n < len(samples) {
		for i := n; i < len(samples); i++ {
			samples[i] = [2]float64{}
		}
		n = len(samples)
	}
	o.played.Add(int64(n))
	return n, true
}

func (o *Output) Err() error { return nil }

// Now is the audible position of the output.
func (o *Output) Now() time.Duration {
	played := o.played.Load()
	wall := o.wall()

	o.nowMu.Lock()
	defer o.nowMu.Unlock()

	if !o.started || played != o.seen {
		if o.started {
			o.chunk = o.rate.D(int(played - o.seen))
		}
		o.seen, o.seenAt, o.started = played, wall, true
	}

	now := o.rate.D(int(o.seen)) - o.buffer
	since := wall.Sub(o.seenAt)
	if since > o.chunk {
		since = o.chunk
	}
	now += since

	if now < 0 {
		now = 0
	}
	if now < o.last {
		now = o.last
	}
	o.last = now
	return now
}
