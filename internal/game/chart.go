package game

import "time"

// ChartNote is one authored note, positioned in beats from beat zero.
type ChartNote struct {
	Index     uint8   // The chart column
	Denom     int     // The beat length, as a denominator, 4 = 1/4 beat
	Beat      float64 // The beat the note should be hit on
	HoldBeats float64 // Zero for taps
}

func (n *ChartNote) IsHold() bool {
	return n.HoldBeats > 0
}

type Chart struct {
	Notes      []*ChartNote // ordered by Beat
	NoteCount  int64
	HoldCount  int64
	MineCount  int64
	Difficulty Difficulty

	BPM    float64
	Offset time.Duration // audio time of beat zero

	next int
}

// Due returns the notes whose beat minus lead has been reached, and slides
// the cursor past them. Every note is returned exactly once.
func (c *Chart) Due(beat, lead float64) []*ChartNote {
	start := c.next
	for c.next < len(c.Notes) && c.Notes[c.next].Beat-lead <= beat {
		c.next++
	}
	return c.Notes[start:c.next]
}

// Remaining is the number of notes not yet returned by Due.
func (c *Chart) Remaining() int {
	return len(c.Notes) - c.next
}

// LastBeat is the beat of the final note end, holds included.
func (c *Chart) LastBeat() float64 {
	last := 0.0
	for _, n := range c.Notes {
		if e := n.Beat + n.HoldBeats; e > last {
			last = e
		}
	}
	return last
}
