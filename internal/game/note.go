package game

import (
	"time"
)

// MinTravel is the floor applied to approach times.
const MinTravel = 100 * time.Microsecond

// Note is a live note of either form. Only *ScheduledNote and *HoldNote
// implement it.
type Note interface {
	Lane() int
	ExpectedHit() time.Duration
	Evaluate(now time.Duration) (Vec3, bool)
	Progress(now time.Duration) float64
	Path() Path
	Snap() int
	Destroy()
	Destroyed() bool

	form() Form
}

// Form tells the two note variants apart.
type Form uint8

const (
	FormTap Form = iota
	FormHold
)

func (f Form) String() string {
	if f == FormHold {
		return "hold"
	}
	return "tap"
}

// FormOf reports the variant of n.
func FormOf(n Note) Form {
	return n.form()
}

// Path is the immutable geometry of a note: spawn to hit, then optionally
// hit to despawn at the same speed.
type Path struct {
	Spawn, Hit Vec3
	Despawn    *Vec3
	Travel     time.Duration // spawn to hit
	Post       time.Duration // hit to despawn
}

// Speed is the approach speed in lane units per second.
func (p Path) Speed() float64 {
	return Distance(p.Spawn, p.Hit) / p.Travel.Seconds()
}

func newPath(spawn, hit Vec3, despawn *Vec3, travel time.Duration) Path {
	if travel < MinTravel {
		travel = MinTravel
	}
	p := Path{Spawn: spawn, Hit: hit, Travel: travel}
	if despawn != nil {
		d := *despawn
		p.Despawn = &d
		if speed := p.Speed(); speed > 0 {
			p.Post = time.Duration(float64(time.Second) * Distance(hit, d) / speed)
		}
	}
	return p
}

// at evaluates the path elapsed time after spawn.
func (p Path) at(elapsed time.Duration) (Vec3, bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed <= p.Travel {
		return Lerp(p.Spawn, p.Hit, float64(elapsed)/float64(p.Travel)), p.Despawn == nil && elapsed >= p.Travel
	}
	if p.Despawn == nil {
		return p.Hit, true
	}
	post := elapsed - p.Travel
	if p.Post <= 0 {
		return *p.Despawn, true
	}
	// Past the despawn point the note keeps moving at the same speed.
	t := float64(post) / float64(p.Post)
	return Lerp(p.Hit, *p.Despawn, t), post >= p.Post
}

// end is the elapsed time at which the path is complete.
func (p Path) end() time.Duration {
	if p.Despawn == nil {
		return p.Travel
	}
	return p.Travel + p.Post
}

// progress projects pos onto the approach axis: 0 at spawn, 1 at hit.
func (p Path) progress(pos Vec3) float64 {
	axis := p.Hit.Sub(p.Spawn)
	l2 := axis.Dot(axis)
	if l2 == 0 {
		return 1
	}
	return pos.Sub(p.Spawn).Dot(axis) / l2
}

// ScheduledNote is a tap note travelling toward the hit line of one lane.
// Its only time anchor is the expected hit instant, every position is a pure
// function of now and that anchor.
type ScheduledNote struct {
	lane        int
	path        Path
	expectedHit time.Duration
	snap        int

	evaluated bool
	committed bool
	destroyed bool
}

// NewScheduledNote creates a tap note spawned at anchorNow, expected at the
// hit line one travel time later.
func NewScheduledNote(lane int, spawn, hit Vec3, despawn *Vec3, travel, anchorNow time.Duration) *ScheduledNote {
	p := newPath(spawn, hit, despawn, travel)
	return &ScheduledNote{
		lane:        lane,
		path:        p,
		expectedHit: anchorNow + p.Travel,
	}
}

func (n *ScheduledNote) form() Form { return FormTap }

func (n *ScheduledNote) Lane() int { return n.lane }

func (n *ScheduledNote) Path() Path { return n.path }

func (n *ScheduledNote) ExpectedHit() time.Duration { return n.expectedHit }

// SpawnInstant is the instant the note sat on its spawn point.
func (n *ScheduledNote) SpawnInstant() time.Duration {
	return n.expectedHit - n.path.Travel
}

// CommitExpectedHit moves the hit anchor to an exact instant, shifting the
// implied spawn instant with it. It applies once, before the first
// evaluation, and reports whether it did.
func (n *ScheduledNote) CommitExpectedHit(instant time.Duration) bool {
	if n.evaluated || n.committed {
		return false
	}
	n.committed = true
	n.expectedHit = instant
	return true
}

// Evaluate returns the position at now and whether the note has finished
// its path.
func (n *ScheduledNote) Evaluate(now time.Duration) (Vec3, bool) {
	n.evaluated = true
	return n.path.at(now - n.SpawnInstant())
}

// Progress is the signed progress along the approach axis at now.
func (n *ScheduledNote) Progress(now time.Duration) float64 {
	pos, _ := n.Evaluate(now)
	return n.path.progress(pos)
}

// Snap is the beat division the note falls on, 1 on a beat, 2 on an
// eighth, 0 when unknown.
func (n *ScheduledNote) Snap() int { return n.snap }

func (n *ScheduledNote) SetSnap(denom int) { n.snap = denom }

// Destroy marks the note as gone. Judges drop destroyed notes.
func (n *ScheduledNote) Destroy() { n.destroyed = true }

func (n *ScheduledNote) Destroyed() bool { return n.destroyed }
