// Package testdata holds a small .sm chart for tests.
package testdata

import (
	_ "embed"
	"io"
	"strings"
)

//go:embed chart.sm
var chart string

// GetChart returns the test chart: 120 bpm, beat zero 250ms into the audio,
// a dance-single Beginner and a dance-double Hard difficulty.
func GetChart() io.Reader {
	return strings.NewReader(chart)
}
