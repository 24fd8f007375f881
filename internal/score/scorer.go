package score

import (
	"time"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/judge"
)

type Scorer interface {
	judge.Feedback

	// Events returns every scored event in arrival order.
	Events() []judge.Event

	Summary() Summary
	Reset()
}

// History is one stored performance.
type History struct {
	ID       string
	Sum      string
	BPM      float64
	Played   time.Time
	MaxCombo int
	MeanMs   float64
	StdDevMs float64
	Events   []judge.Event
}

type Summary struct {
	Counts   [tierCount]int // indexed by game.Tier
	Empty    int
	Combo    int
	MaxCombo int

	// Timing of input-driven judgements, in milliseconds.
	MeanMs   float64
	StdDevMs float64
	Deltas   []time.Duration
}

const tierCount = int(game.Miss) + 1

// Count is the number of events graded t.
func (s Summary) Count(t game.Tier) int {
	if int(t) >= len(s.Counts) {
		return 0
	}
	return s.Counts[t]
}

// Judged is the number of scored events, empty hits excluded.
func (s Summary) Judged() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}
