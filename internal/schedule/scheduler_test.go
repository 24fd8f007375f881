package schedule

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/judge"
)

func newLanes(n int) []*Lane {
	lanes := make([]*Lane, n)
	for i := range lanes {
		x := float64(i)
		lanes[i] = &Lane{
			Index:   i,
			Spawn:   &game.Vec3{X: x, Z: 20},
			Hit:     &game.Vec3{X: x},
			Despawn: &game.Vec3{X: x, Z: -5},
			Judge:   judge.New(judge.Config{Lane: i, Windows: game.DefaultWindows}, nil),
		}
	}
	return lanes
}

func newClock(t *testing.T) (*clock.Clock, *clock.ManualSource) {
	src := clock.NewManualSource(time.Second)
	c, err := clock.New(src, 120)
	require.NoError(t, err)
	c.Start()
	return c, src
}

func TestSpawnCommitsBeatAlignedHit(t *testing.T) {
	c, src := newClock(t)
	lanes := newLanes(4)
	s := New(c, lanes, Options{IntervalBeats: 1, ApproachBeats: 4}, rand.New(rand.NewPCG(1, 2)))

	// A frame lands 13ms after beat zero.
	src.Advance(13 * time.Millisecond)
	notes := s.Update(c.Now())
	require.Len(t, notes, 1)

	n := notes[0]
	assert.Equal(t, c.InstantAtBeat(4), n.ExpectedHit())
	assert.Equal(t, 3*time.Second, n.ExpectedHit())
	assert.Equal(t, 2*time.Second, n.Path().Travel)
	assert.Len(t, lanes[n.Lane()].Judge.Taps(), 1)

	assert.Equal(t, 1, n.Snap())

	// Already 13ms into its approach on the first frame.
	assert.InDelta(t, 0.013/2, n.Progress(c.Now()), 1e-9)
}

func TestUpdateCatchesUpMissedTicks(t *testing.T) {
	c, src := newClock(t)
	s := New(c, newLanes(4), Options{IntervalBeats: 0.5, ApproachBeats: 4}, rand.New(rand.NewPCG(3, 4)))

	assert.Len(t, s.Update(c.Now()), 1)
	src.Advance(time.Second) // two beats, four ticks
	notes := s.Update(c.Now())
	require.Len(t, notes, 4)
	for i, n := range notes {
		assert.Equal(t, c.InstantAtBeat(4.5+0.5*float64(i)), n.ExpectedHit())
	}
	assert.Empty(t, s.Update(c.Now()))
}

func TestNothingBeforeStart(t *testing.T) {
	c, err := clock.New(clock.NewManualSource(0), 120)
	require.NoError(t, err)
	s := New(c, newLanes(2), Options{IntervalBeats: 1, ApproachBeats: 4}, rand.New(rand.NewPCG(0, 0)))
	assert.Empty(t, s.Update(time.Minute))
}

func TestSeededScheduleIsReproducible(t *testing.T) {
	run := func() []int {
		c, src := newClock(t)
		s := New(c, newLanes(5), Options{IntervalBeats: 1, ApproachBeats: 4, Form: Mixed, HoldRatio: 0.3, HoldBeats: 0.5, AvoidRepeat: true}, rand.New(rand.NewPCG(42, 7)))
		var lanes []int
		for i := 0; i < 64; i++ {
			for _, n := range s.Update(c.Now()) {
				lanes = append(lanes, n.Lane()*10+int(game.FormOf(n)))
			}
			src.Advance(500 * time.Millisecond)
		}
		return lanes
	}
	assert.Equal(t, run(), run())
}

func TestAvoidRepeatRetriesOnce(t *testing.T) {
	c, _ := newClock(t)
	lanes := newLanes(2)

	// With two lanes and one retry, a repeat needs two bad draws in a row.
	s := New(c, lanes, Options{AvoidRepeat: true}, rand.New(rand.NewPCG(9, 9)))
	repeats := 0
	prev, _ := s.Pick()
	for i := 0; i < 4000; i++ {
		pick, ok := s.Pick()
		require.True(t, ok)
		if pick == prev {
			repeats++
		}
		prev = pick
	}
	assert.InDelta(t, 1000, repeats, 150)

	s = New(c, lanes, Options{}, rand.New(rand.NewPCG(9, 9)))
	repeats = 0
	prev, _ = s.Pick()
	for i := 0; i < 4000; i++ {
		pick, _ := s.Pick()
		if pick == prev {
			repeats++
		}
		prev = pick
	}
	assert.InDelta(t, 2000, repeats, 150)
}

func TestSingleCandidateRepeats(t *testing.T) {
	c, _ := newClock(t)
	lanes := newLanes(3)
	lanes[0].Despawn = nil
	lanes[2].Kind = game.Upper

	s := New(c, lanes, Options{AvoidRepeat: true, GroundOnly: true}, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, []int{1}, s.Candidates())
	for i := 0; i < 10; i++ {
		pick, ok := s.Pick()
		require.True(t, ok)
		assert.Equal(t, 1, pick)
	}

	s = New(c, lanes, Options{Lanes: []int{2}}, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, []int{2}, s.Candidates())

	s = New(c, lanes, Options{GroundOnly: true, Lanes: []int{2}}, rand.New(rand.NewPCG(1, 1)))
	_, ok := s.Pick()
	assert.False(t, ok)
}

func TestRejectedHoldIsDiscarded(t *testing.T) {
	c, src := newClock(t)
	lanes := newLanes(1)
	s := New(c, lanes, Options{IntervalBeats: 1, ApproachBeats: 4, Form: HoldOnly, HoldBeats: 8}, rand.New(rand.NewPCG(5, 5)))

	first := s.Update(c.Now())
	require.Len(t, first, 1)
	hold := first[0].(*game.HoldNote)
	assert.Equal(t, 4*time.Second, hold.Duration())

	src.Advance(500 * time.Millisecond)
	assert.Empty(t, s.Update(c.Now()), "lane still has a live hold")
	assert.Same(t, hold, lanes[0].Judge.Hold())
}

func TestChartSpawnsAhead(t *testing.T) {
	c, src := newClock(t)
	lanes := newLanes(4)
	chart := &game.Chart{Notes: []*game.ChartNote{
		{Index: 0, Denom: 1, Beat: 4},
		{Index: 3, Denom: 2, Beat: 4.5, HoldBeats: 2},
		{Index: 6, Denom: 1, Beat: 5},
		{Index: 1, Denom: 4, Beat: 8.25},
	}}
	s := NewChart(c, lanes, chart, Options{ApproachBeats: 4})

	// Beat 4 minus four beats of approach is due right away.
	notes := s.Update(c.Now())
	require.Len(t, notes, 1)
	assert.Equal(t, c.InstantAtBeat(4), notes[0].ExpectedHit())
	assert.Equal(t, 1, notes[0].Snap())
	assert.Empty(t, s.Update(c.Now()))

	src.Advance(500 * time.Millisecond) // beat 1
	notes = s.Update(c.Now())
	require.Len(t, notes, 1, "column 6 has no lane")
	assert.Equal(t, game.FormHold, game.FormOf(notes[0]))
	assert.Equal(t, time.Second, notes[0].(*game.HoldNote).Duration())
	assert.Equal(t, 3, notes[0].Lane())
	assert.Equal(t, 2, notes[0].Snap())
	assert.False(t, s.Done())

	src.Advance(4 * time.Second)
	notes = s.Update(c.Now())
	require.Len(t, notes, 1)
	assert.Equal(t, 4, notes[0].Snap())
	assert.True(t, s.Done())
}

func TestParseForm(t *testing.T) {
	for name, want := range map[string]FormPolicy{"tap": TapOnly, "hold": HoldOnly, "mixed": Mixed} {
		got, err := ParseForm(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseForm("splash")
	assert.Error(t, err)
}
