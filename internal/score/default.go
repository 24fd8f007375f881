package score

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"gonum.org/v1/gonum/stat"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/judge"
)

// DefaultScorer counts tiers and keeps a combo. Empty hits are counted but
// neither score nor break the combo.
type DefaultScorer struct {
	events   []judge.Event
	counts   [tierCount]int
	empty    int
	combo    int
	maxCombo int
}

func (s *DefaultScorer) Judged(ev judge.Event) {
	if ev.Empty {
		s.empty++
		return
	}
	s.events = append(s.events, ev)
	if int(ev.Tier) < len(s.counts) {
		s.counts[ev.Tier]++
	}
	if ev.Tier == game.Miss {
		s.combo = 0
		return
	}
	s.combo++
	if s.combo > s.maxCombo {
		s.maxCombo = s.combo
	}
}

func (s *DefaultScorer) Events() []judge.Event { return s.events }

func (s *DefaultScorer) Reset() { *s = DefaultScorer{} }

func (s *DefaultScorer) Summary() Summary {
	sum := Summary{
		Counts:   s.counts,
		Empty:    s.empty,
		Combo:    s.combo,
		MaxCombo: s.maxCombo,
	}
	ms := []float64{}
	for _, ev := range s.events {
		if ev.Auto {
			continue
		}
		sum.Deltas = append(sum.Deltas, ev.Delta)
		ms = append(ms, float64(ev.Delta)/float64(time.Millisecond))
	}
	switch len(ms) {
	case 0:
	case 1:
		sum.MeanMs = ms[0]
	default:
		sum.MeanMs, sum.StdDevMs = stat.MeanStdDev(ms, nil)
	}
	return sum
}

// Sum identifies a chart, or a random session setup, for score history.
func Sum(section string) string {
	sum := sha256.Sum256([]byte(section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// EventsCompact is every event of one lane, column by column.
type EventsCompact struct {
	Lane   int
	Parts  []judge.Part
	Tiers  []game.Tier
	Deltas []time.Duration
	Auto   []bool
}

func compactEvents(events []judge.Event) []EventsCompact {
	laneCount := 0
	for _, e := range events {
		if e.Lane+1 > laneCount {
			laneCount = e.Lane + 1
		}
	}
	evs := make([]EventsCompact, laneCount)
	for i := range evs {
		evs[i] = EventsCompact{Lane: i, Parts: []judge.Part{}, Tiers: []game.Tier{}, Deltas: []time.Duration{}, Auto: []bool{}}
	}
	for _, e := range events {
		c := &evs[e.Lane]
		c.Parts = append(c.Parts, e.Part)
		c.Tiers = append(c.Tiers, e.Tier)
		c.Deltas = append(c.Deltas, e.Delta)
		c.Auto = append(c.Auto, e.Auto)
	}
	return evs
}

func uncompactEvents(evs []EventsCompact) []judge.Event {
	events := []judge.Event{}
	for _, c := range evs {
		for i := range c.Deltas {
			events = append(events, judge.Event{
				Lane:  c.Lane,
				Part:  c.Parts[i],
				Tier:  c.Tiers[i],
				Delta: c.Deltas[i],
				Auto:  c.Auto[i],
			})
		}
	}
	return events
}
