package game

import "math"

// Measure is a grid line drawn across the lanes.
type Measure struct {
	Denom int     // 1 on a bar, 4 on a beat, 8 on an off beat
	Beat  float64 // The beat the line marks
}

// Grid returns the half-beat lines in [from, to], assuming four beats to
// the bar.
func Grid(from, to float64) []Measure {
	if to < from {
		return nil
	}
	measures := []Measure{}
	for half := math.Ceil(from * 2); half <= to*2; half++ {
		beat := half / 2
		denom := 8
		switch {
		case math.Mod(beat, 4) == 0:
			denom = 1
		case math.Mod(beat, 1) == 0:
			denom = 4
		}
		measures = append(measures, Measure{Denom: denom, Beat: beat})
	}
	return measures
}

// Snaps are the beat divisions a chart row can fall on.
var Snaps = []int{1, 2, 3, 4, 6, 8, 12, 16, 48}

// Snap returns the smallest of Snaps that beat falls on, or 0.
func Snap(beat float64) int {
	for _, d := range Snaps {
		x := beat * float64(d)
		if math.Abs(x-math.Round(x)) < 1e-6 {
			return d
		}
	}
	return 0
}
