// Package schedule decides which lane gets the next note and when it must
// be hit.
package schedule

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/judge"
)

// Lane is a spawn target. A lane takes part in random scheduling only when
// all three path points are set.
type Lane struct {
	Index               int
	Kind                game.LaneKind
	Spawn, Hit, Despawn *game.Vec3
	Judge               *judge.LaneJudge
}

func (l *Lane) Ready() bool {
	return nil != l.Spawn && nil != l.Hit && nil != l.Despawn && nil != l.Judge
}

// FormPolicy chooses between taps and holds for random scheduling.
type FormPolicy uint8

const (
	TapOnly FormPolicy = iota
	HoldOnly
	Mixed
)

var formNames = map[string]FormPolicy{"tap": TapOnly, "hold": HoldOnly, "mixed": Mixed}

func ParseForm(s string) (FormPolicy, error) {
	f, ok := formNames[s]
	if !ok {
		return TapOnly, fmt.Errorf("unknown form policy %q", s)
	}
	return f, nil
}

type Options struct {
	IntervalBeats float64 // beats between scheduling ticks
	ApproachBeats float64 // spawn to hit
	HoldBeats     float64 // hold length for random holds
	StartBeat     float64 // beat of the first tick

	Form      FormPolicy
	HoldRatio float64 // chance of a hold under Mixed

	AvoidRepeat bool
	GroundOnly  bool
	Lanes       []int // when set, only these lane indices are candidates
}

// Scheduler spawns notes either at random on a beat grid or from a chart.
// It owns no notes, each accepted note is registered with its lane's judge
// and handed back to the caller for rendering.
type Scheduler struct {
	clock *clock.Clock
	lanes []*Lane
	opts  Options
	rng   *rand.Rand
	chart *game.Chart

	tick int
	last int
}

// New creates a random scheduler. rng is the only source of randomness, a
// seeded rng makes the whole schedule reproducible.
func New(c *clock.Clock, lanes []*Lane, opts Options, rng *rand.Rand) *Scheduler {
	return &Scheduler{clock: c, lanes: lanes, opts: opts, rng: rng, last: -1}
}

// NewChart creates a scheduler that plays chart. Chart columns map onto lane
// indices.
func NewChart(c *clock.Clock, lanes []*Lane, chart *game.Chart, opts Options) *Scheduler {
	return &Scheduler{clock: c, lanes: lanes, opts: opts, chart: chart, last: -1}
}

func (s *Scheduler) travel() time.Duration {
	return clock.Seconds(s.opts.ApproachBeats * s.clock.SecondsPerBeat())
}

// Done reports whether a chart scheduler has spawned every note.
func (s *Scheduler) Done() bool {
	return nil != s.chart && s.chart.Remaining() == 0
}

// Update spawns every note due at now and returns the accepted ones.
func (s *Scheduler) Update(now time.Duration) []game.Note {
	if !s.clock.Started() {
		return nil
	}
	if nil != s.chart {
		return s.updateChart(now)
	}
	if s.opts.IntervalBeats <= 0 {
		return nil
	}

	var spawned []game.Note
	beat := s.clock.CurrentBeat(now)
	for {
		spawnBeat := s.opts.StartBeat + float64(s.tick)*s.opts.IntervalBeats
		if spawnBeat > beat {
			return spawned
		}
		s.tick++

		lane, ok := s.Pick()
		if !ok {
			continue
		}
		form, holdBeats := game.FormTap, 0.0
		if s.holdNext() {
			form, holdBeats = game.FormHold, s.opts.HoldBeats
		}
		target := spawnBeat + s.opts.ApproachBeats
		if n := s.Spawn(now, lane, form, target, holdBeats, game.Snap(target)); nil != n {
			spawned = append(spawned, n)
		}
	}
}

func (s *Scheduler) updateChart(now time.Duration) []game.Note {
	var spawned []game.Note
	for _, cn := range s.chart.Due(s.clock.CurrentBeat(now), s.opts.ApproachBeats) {
		lane := int(cn.Index)
		if lane >= len(s.lanes) || !s.lanes[lane].Ready() {
			log.Println("chart column", lane, "has no configured lane, skipping note")
			continue
		}
		form := game.FormTap
		if cn.IsHold() {
			form = game.FormHold
		}
		if n := s.Spawn(now, lane, form, cn.Beat, cn.HoldBeats, cn.Denom); nil != n {
			spawned = append(spawned, n)
		}
	}
	return spawned
}

func (s *Scheduler) holdNext() bool {
	switch s.opts.Form {
	case HoldOnly:
		return true
	case Mixed:
		return s.rng.Float64() < s.opts.HoldRatio
	}
	return false
}

// Candidates lists the lane indices random scheduling may pick from.
func (s *Scheduler) Candidates() []int {
	var out []int
	for i, l := range s.lanes {
		if !l.Ready() {
			continue
		}
		if s.opts.GroundOnly && l.Kind != game.Ground {
			continue
		}
		if len(s.opts.Lanes) > 0 && !contains(s.opts.Lanes, i) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Pick draws a lane uniformly from the candidates. With AvoidRepeat a draw
// equal to the previous pick is redrawn once, and the second draw is kept
// even if it repeats.
func (s *Scheduler) Pick() (int, bool) {
	candidates := s.Candidates()
	if len(candidates) == 0 {
		return -1, false
	}
	pick := candidates[s.rng.IntN(len(candidates))]
	if s.opts.AvoidRepeat && len(candidates) >= 2 && pick == s.last {
		pick = candidates[s.rng.IntN(len(candidates))]
	}
	s.last = pick
	return pick, true
}

// Spawn creates a note on lane aimed at targetBeat and registers it. The hit
// instant is committed before anything can evaluate the note. A hold that
// its lane rejects is destroyed and nil is returned. snap is the beat
// division of targetBeat, used to colour the note.
func (s *Scheduler) Spawn(now time.Duration, lane int, form game.Form, targetBeat, holdBeats float64, snap int) game.Note {
	l := s.lanes[lane]
	hit := s.clock.InstantAtBeat(targetBeat)

	if form == game.FormHold {
		duration := clock.Seconds(holdBeats * s.clock.SecondsPerBeat())
		h := game.NewHoldNote(lane, *l.Spawn, *l.Hit, l.Despawn, s.travel(), now, duration)
		h.CommitExpectedHit(hit)
		h.SetSnap(snap)
		if !l.Judge.RegisterHold(h) {
			h.Destroy()
			return nil
		}
		return h
	}

	n := game.NewScheduledNote(lane, *l.Spawn, *l.Hit, l.Despawn, s.travel(), now)
	n.CommitExpectedHit(hit)
	n.SetSnap(snap)
	l.Judge.RegisterTap(n)
	return n
}
