package game

import (
	"time"
)

// HoldState is the judgement state of a hold note.
type HoldState uint8

const (
	HoldIdle HoldState = iota
	HoldActive
	HoldSucceeded
	HoldFailed
)

func (s HoldState) String() string {
	switch s {
	case HoldActive:
		return "active"
	case HoldSucceeded:
		return "succeeded"
	case HoldFailed:
		return "failed"
	}
	return "idle"
}

// Terminal states never change again.
func (s HoldState) Terminal() bool {
	return s == HoldSucceeded || s == HoldFailed
}

// HoldNote is a note with a head judged on press and a tail judged on
// release, holdDuration apart.
//
//	Idle --head--> Active --tail--> Succeeded
//	Idle --head miss/timeout--> Failed
//	Active --early release/tail miss/timeout--> Failed
type HoldNote struct {
	ScheduledNote

	duration   time.Duration
	tailOffset Vec3
	state      HoldState
}

// NewHoldNote creates a hold note. A negative duration is treated as zero.
func NewHoldNote(lane int, spawn, hit Vec3, despawn *Vec3, travel, anchorNow, duration time.Duration) *HoldNote {
	if duration < 0 {
		duration = 0
	}
	h := &HoldNote{
		ScheduledNote: *NewScheduledNote(lane, spawn, hit, despawn, travel, anchorNow),
		duration:      duration,
	}

	// The tail trails the head by duration seconds of travel, back toward
	// the spawn point.
	axis := spawn.Sub(hit)
	if l := axis.Len(); l > 0 {
		h.tailOffset = axis.Scale(h.path.Speed() * duration.Seconds() / l)
	}
	return h
}

func (h *HoldNote) form() Form { return FormHold }

func (h *HoldNote) Duration() time.Duration { return h.duration }

// Head is the instant the head should be pressed.
func (h *HoldNote) Head() time.Duration { return h.expectedHit }

// Tail is the instant the key should be released.
func (h *HoldNote) Tail() time.Duration { return h.expectedHit + h.duration }

// TailOffset is the offset of the tail from the head in lane space.
func (h *HoldNote) TailOffset() Vec3 { return h.tailOffset }

func (h *HoldNote) State() HoldState { return h.state }

func (h *HoldNote) Terminal() bool { return h.state.Terminal() }

// StartHold moves Idle to Active.
func (h *HoldNote) StartHold() {
	if h.state == HoldIdle {
		h.state = HoldActive
	}
}

// Fail moves any non-terminal state to Failed.
func (h *HoldNote) Fail() {
	if !h.state.Terminal() {
		h.state = HoldFailed
	}
}

// SucceedAndFinish moves Active to Succeeded and marks the note for
// deletion.
func (h *HoldNote) SucceedAndFinish() {
	if h.state != HoldActive {
		return
	}
	h.state = HoldSucceeded
	h.Destroy()
}

// Evaluate returns the head position. The hold is finished once its tail
// has travelled the whole path.
func (h *HoldNote) Evaluate(now time.Duration) (Vec3, bool) {
	pos, _ := h.ScheduledNote.Evaluate(now)
	tailElapsed := now - h.SpawnInstant() - h.duration
	return pos, tailElapsed >= h.path.end()
}

// EvaluateTail returns the tail position at now.
func (h *HoldNote) EvaluateTail(now time.Duration) Vec3 {
	pos, _ := h.path.at(now - h.SpawnInstant() - h.duration)
	return pos
}

// Progress is the head's progress along the approach axis.
func (h *HoldNote) Progress(now time.Duration) float64 {
	pos, _ := h.Evaluate(now)
	return h.path.progress(pos)
}

// TailProgress is the tail's progress along the approach axis.
func (h *HoldNote) TailProgress(now time.Duration) float64 {
	return h.path.progress(h.EvaluateTail(now))
}
