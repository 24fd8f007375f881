// Package judge runs the per-lane judgement state machine.
package judge

import (
	"time"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/input"
)

// Config configures one lane's judge.
type Config struct {
	Lane    int
	Windows game.Windows
	Offset  time.Duration // user input offset, added to every delta

	// EmptyOnRelease reports a release with no active hold as an empty hit.
	// Off by default, since every ordinary tap ends with such a release.
	EmptyOnRelease bool
}

// LaneJudge owns the live notes of one lane: any number of taps and at most
// one hold. It is driven once per frame by Update.
type LaneJudge struct {
	cfg      Config
	ladder   game.Judgements
	feedback Feedback

	taps []*game.ScheduledNote
	hold *game.HoldNote
}

func New(cfg Config, feedback Feedback) *LaneJudge {
	if nil == feedback {
		feedback = FeedbackFunc(func(Event) {})
	}
	return &LaneJudge{
		cfg:      cfg,
		ladder:   cfg.Windows.Ladder(),
		feedback: feedback,
	}
}

func (j *LaneJudge) Lane() int { return j.cfg.Lane }

// Taps returns the live tap notes in registration order.
func (j *LaneJudge) Taps() []*game.ScheduledNote { return j.taps }

// Hold returns the live hold note, if any.
func (j *LaneJudge) Hold() *game.HoldNote { return j.hold }

// RegisterTap adds a tap to the lane.
func (j *LaneJudge) RegisterTap(n *game.ScheduledNote) {
	if nil == n || n.Destroyed() {
		return
	}
	j.taps = append(j.taps, n)
}

// RegisterHold makes h the lane's hold. It fails, leaving the current hold
// in place, when a hold is already live. The caller owns a rejected note.
func (j *LaneJudge) RegisterHold(h *game.HoldNote) bool {
	if nil == h || h.Destroyed() || h.Terminal() {
		return false
	}
	if j.holdLive() {
		return false
	}
	j.hold = h
	return true
}

func (j *LaneJudge) holdLive() bool {
	return nil != j.hold && !j.hold.Destroyed() && !j.hold.Terminal()
}

// Update runs one frame. The order is fixed: drop dead notes, time out holds,
// time out taps, then judge the press edge and the release edge. A note that
// times out in the same frame it is pressed is therefore a miss, and the
// press falls through to the next candidate.
func (j *LaneJudge) Update(now time.Duration, sig input.Signal) {
	j.collect()
	j.sweepHold(now, sig)
	j.sweepTaps(now)

	if sig.Pressed {
		j.press(now)
	}
	if sig.Released {
		j.release(now)
	}
}

func (j *LaneJudge) delta(now, instant time.Duration) time.Duration {
	return now - instant + j.cfg.Offset
}

func (j *LaneJudge) emit(ev Event) {
	ev.Lane = j.cfg.Lane
	j.feedback.Judged(ev)
}

func (j *LaneJudge) empty(now time.Duration, part Part) {
	j.emit(Event{Part: part, Tier: game.Miss, Empty: true, At: now})
}

func (j *LaneJudge) collect() {
	live := j.taps[:0]
	for _, n := range j.taps {
		if !n.Destroyed() {
			live = append(live, n)
		}
	}
	for i := len(live); i < len(j.taps); i++ {
		j.taps[i] = nil
	}
	j.taps = live

	if nil != j.hold && (j.hold.Destroyed() || j.hold.Terminal()) {
		j.hold = nil
	}
}

func (j *LaneJudge) sweepHold(now time.Duration, sig input.Signal) {
	h := j.hold
	if nil == h || h.Terminal() {
		return
	}
	ruin := j.cfg.Windows.Ruin

	switch h.State() {
	case game.HoldIdle:
		if d := j.delta(now, h.Head()); d > ruin {
			h.Fail()
			j.emit(Event{Part: HoldHead, Tier: game.Miss, Auto: true, Delta: d, At: now})
		}
	case game.HoldActive:
		d := j.delta(now, h.Tail())
		switch {
		case !sig.Held && !sig.Released:
			// The key is up without a release edge to judge, the release was
			// lost (focus change, dropped event).
			h.Fail()
			j.emit(Event{Part: HoldTail, Tier: game.Miss, Auto: true, Delta: d, At: now})
		case sig.Held && d > ruin:
			h.Fail()
			j.emit(Event{Part: HoldTail, Tier: game.Miss, Auto: true, Delta: d, At: now})
		}
	}
}

func (j *LaneJudge) sweepTaps(now time.Duration) {
	ruin := j.cfg.Windows.Ruin
	live := j.taps[:0]
	for _, n := range j.taps {
		if d := j.delta(now, n.ExpectedHit()); d > ruin {
			// The note keeps travelling, only the judge lets go of it.
			j.emit(Event{Part: Tap, Tier: game.Miss, Auto: true, Delta: d, At: now})
			continue
		}
		live = append(live, n)
	}
	for i := len(live); i < len(j.taps); i++ {
		j.taps[i] = nil
	}
	j.taps = live
}

func (j *LaneJudge) press(now time.Duration) {
	if nil != j.hold && j.hold.State() == game.HoldIdle {
		j.judgeHead(now)
		return
	}
	j.judgeTap(now)
}

func (j *LaneJudge) release(now time.Duration) {
	if nil != j.hold && j.hold.State() == game.HoldActive {
		j.judgeTail(now)
		return
	}
	if j.cfg.EmptyOnRelease {
		j.empty(now, HoldTail)
	}
}

// earliest returns the index of the tap with the smallest expected hit.
// Ties go to the note registered first.
func (j *LaneJudge) earliest() int {
	best := -1
	for i, n := range j.taps {
		if best < 0 || n.ExpectedHit() < j.taps[best].ExpectedHit() {
			best = i
		}
	}
	return best
}

func (j *LaneJudge) judgeTap(now time.Duration) {
	i := j.earliest()
	if i < 0 {
		j.empty(now, Tap)
		return
	}
	target := j.taps[i]

	d := j.delta(now, target.ExpectedHit())
	// Pressing far too early never burns a real note.
	if d < -j.cfg.Windows.Ruin {
		j.empty(now, Tap)
		return
	}

	judgement := j.ladder.Judge(d)
	last := len(j.taps) - 1
	copy(j.taps[i:], j.taps[i+1:])
	j.taps[last] = nil
	j.taps = j.taps[:last]
	target.Destroy()
	j.emit(Event{Part: Tap, Tier: judgement.Tier, Delta: d, At: now})
}

func (j *LaneJudge) judgeHead(now time.Duration) {
	h := j.hold
	d := j.delta(now, h.Head())
	if d < -j.cfg.Windows.Ruin {
		j.empty(now, HoldHead)
		return
	}

	judgement := j.ladder.Judge(d)
	if judgement.Tier == game.Miss {
		h.Fail()
	} else {
		h.StartHold()
	}
	j.emit(Event{Part: HoldHead, Tier: judgement.Tier, Delta: d, At: now})
}

func (j *LaneJudge) judgeTail(now time.Duration) {
	h := j.hold
	d := j.delta(now, h.Tail())

	// Letting go is a commitment, far too early fails instead of being
	// ignored like an early press.
	tier := game.Miss
	if d >= -j.cfg.Windows.Ruin {
		tier = j.ladder.Judge(d).Tier
	}
	if tier == game.Miss {
		h.Fail()
	} else {
		h.SucceedAndFinish()
	}
	j.emit(Event{Part: HoldTail, Tier: tier, Delta: d, At: now})
}
