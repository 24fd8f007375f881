package game

import (
	"errors"
	"fmt"
	"time"
)

// Tier is an accuracy grade, best first.
type Tier uint8

const (
	Severance Tier = iota
	Clean
	Trace
	Fracture
	Ruin
	Miss
)

var tierNames = [...]string{"Severance", "Clean", "Trace", "Fracture", "Ruin", "Miss"}

// Tiers lists every tier in order.
var Tiers = []Tier{Severance, Clean, Trace, Fracture, Ruin, Miss}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", t)
}

// ErrWindows is returned when hit windows are not strictly increasing.
var ErrWindows = errors.New("hit windows must be positive and strictly increasing")

// Windows holds the upper bound of |delta| for each tier. Anything beyond
// Ruin is a Miss.
type Windows struct {
	Severance, Clean, Trace, Fracture, Ruin time.Duration
}

// DefaultWindows are the stock hit windows.
var DefaultWindows = Windows{
	Severance: 35 * time.Millisecond,
	Clean:     75 * time.Millisecond,
	Trace:     120 * time.Millisecond,
	Fracture:  170 * time.Millisecond,
	Ruin:      220 * time.Millisecond,
}

func (w Windows) Validate() error {
	bounds := w.bounds()
	prev := time.Duration(0)
	for i, b := range bounds {
		if b <= prev {
			return fmt.Errorf("%w: %v window %v", ErrWindows, Tier(i), b)
		}
		prev = b
	}
	return nil
}

func (w Windows) bounds() [5]time.Duration {
	return [5]time.Duration{w.Severance, w.Clean, w.Trace, w.Fracture, w.Ruin}
}

// Judgement is one rung of the ladder.
type Judgement struct {
	Tier Tier
	Time time.Duration // inclusive upper bound of |delta|, zero for Miss
	Name string
}

// Judgements is the ladder of tiers, Miss last.
type Judgements []Judgement

// Ladder builds the judgement ladder for w.
func (w Windows) Ladder() Judgements {
	js := make(Judgements, 0, len(Tiers))
	for i, b := range w.bounds() {
		js = append(js, Judgement{Tier: Tier(i), Time: b, Name: Tier(i).String()})
	}
	return append(js, Judgement{Tier: Miss, Name: Miss.String()})
}

// Judge classifies a signed delta. Exactly one tier matches.
func (js Judgements) Judge(delta time.Duration) Judgement {
	if delta < 0 {
		delta = -delta
	}
	for i := 0; i < len(js)-1; i++ {
		if delta <= js[i].Time {
			return js[i]
		}
	}
	return js[len(js)-1]
}
