package audio

import (
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWall struct{ t time.Time }

func (w *fakeWall) now() time.Time { return w.t }

func TestOutputNowFollowsSamples(t *testing.T) {
	wall := &fakeWall{t: time.Unix(100, 0)}
	o := newOutput(beep.SampleRate(1000), 20*time.Millisecond, wall.now)

	// Nothing audible until the first buffer has played out.
	assert.Equal(t, time.Duration(0), o.Now())

	buf := make([][2]float64, 50)
	n, ok := o.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 50, n)
	assert.Equal(t, 30*time.Millisecond, o.Now())

	// Interpolated between fills, capped at one chunk.
	wall.t = wall.t.Add(10 * time.Millisecond)
	assert.Equal(t, 40*time.Millisecond, o.Now())
	wall.t = wall.t.Add(time.Second)
	assert.Equal(t, 80*time.Millisecond, o.Now())

	// A late fill never moves time backwards.
	o.Stream(buf[:10])
	assert.Equal(t, 80*time.Millisecond, o.Now())
	o.Stream(buf)
	assert.Equal(t, 90*time.Millisecond, o.Now())
}

func TestOutputMixes(t *testing.T) {
	o := newOutput(beep.SampleRate(1000), 0, time.Now)
	o.Play(beep.Take(5, Metronome(beep.SampleRate(1000), 120)))
	assert.Equal(t, 1, o.mixer.Len())

	buf := make([][2]float64, 10)
	n, ok := o.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	for _, s := range buf[5:] {
		assert.Equal(t, [2]float64{}, s)
	}

	// The drained streamer is dropped on the next fill.
	o.Stream(buf)
	assert.Equal(t, 0, o.mixer.Len())
}

func TestMetronomeTicksOnBeats(t *testing.T) {
	rate := beep.SampleRate(1000)
	m := Metronome(rate, 120)
	buf := make([][2]float64, 1000)
	m.Stream(buf)

	loud := func(from, to int) bool {
		for _, s := range buf[from:to] {
			if s[0] != 0 {
				return true
			}
		}
		return false
	}
	assert.True(t, loud(0, 30))
	assert.False(t, loud(30, 500))
	assert.True(t, loud(500, 530))
	assert.False(t, loud(530, 1000))
}

func TestDelayAndExtensions(t *testing.T) {
	rate := beep.SampleRate(1000)
	s := Delay(rate, 100*time.Millisecond, beep.Take(10, Metronome(rate, 60)))
	buf := make([][2]float64, 200)
	n, _ := s.Stream(buf)
	assert.Equal(t, 110, n)

	assert.True(t, IsAudio("song/Track.OGG"))
	assert.True(t, IsAudio("a.mp3"))
	assert.False(t, IsAudio("chart.sm"))

	_, _, err := Decode("chart.sm")
	assert.Error(t, err)
}
