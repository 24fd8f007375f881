package judge

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/rail/internal/game"
)

//go:generate mockgen -destination "mock_feedback_test.go" -package $GOPACKAGE -write_package_comment=false git.lost.host/meutraa/rail/internal/judge Feedback

// Part is what an event judged.
type Part uint8

const (
	Tap Part = iota
	HoldHead
	HoldTail
)

func (p Part) String() string {
	switch p {
	case HoldHead:
		return "head"
	case HoldTail:
		return "tail"
	}
	return "tap"
}

// Event is one judgement outcome.
type Event struct {
	Lane  int
	Part  Part
	Tier  game.Tier
	Empty bool          // a press or release that matched nothing, never scored
	Auto  bool          // produced by a timeout sweep rather than input
	Delta time.Duration // signed, late is positive, offset applied
	At    time.Duration // audio instant of the judgement
}

func (e Event) String() string {
	if e.Empty {
		return fmt.Sprintf("[lane %d] [Empty]", e.Lane)
	}
	when := "Late"
	if e.Delta < 0 {
		when = "Early"
	}
	if e.Auto {
		when = "(no input) " + when
	}
	d := e.Delta
	if d < 0 {
		d = -d
	}
	return fmt.Sprintf("[lane %d] [%v %v] %s %.1fms", e.Lane, e.Part, e.Tier, when, float64(d)/float64(time.Millisecond))
}

// Feedback receives every judgement. Calls are fire-and-forget.
type Feedback interface {
	Judged(ev Event)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(ev Event)

func (f FeedbackFunc) Judged(ev Event) { f(ev) }

// Multi fans an event out to several receivers.
type Multi []Feedback

func (m Multi) Judged(ev Event) {
	for _, f := range m {
		f.Judged(ev)
	}
}
