package parser

import (
	"errors"
	"io"

	"git.lost.host/meutraa/rail/internal/game"
)

// ErrVariableBPM is returned for charts whose tempo changes, a session runs
// at one BPM.
var ErrVariableBPM = errors.New("chart changes bpm")

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
	Read(r io.Reader) ([]*game.Chart, error)
}
