package theme

import (
	"image/color"

	"git.lost.host/meutraa/rail/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(kind game.LaneKind) string {
	return syms[kind]
}

func (t *DefaultTheme) NoteColor(denom int) color.RGBA {
	return getNoteColor(denom)
}

func (t *DefaultTheme) RenderHold(kind game.LaneKind) string {
	return holdSyms[kind]
}

func (t *DefaultTheme) RenderHitField(kind game.LaneKind) string {
	return barSyms[kind]
}

func (t *DefaultTheme) RenderMeasure(denom int) string {
	if denom == 1 {
		return "─"
	}
	return "·"
}

func (t *DefaultTheme) TierColor(kind game.LaneKind, tier game.Tier) (color.RGBA, bool) {
	if tier == game.Miss || int(tier) >= len(groundColors) {
		return color.RGBA{}, false
	}
	// Upper lanes flash a perfect hit in the effect's own colour.
	if kind == game.Upper && tier == game.Severance {
		return color.RGBA{}, false
	}
	if kind == game.Upper {
		return upperColors[tier], true
	}
	return groundColors[tier], true
}

var (
	syms     = [...]string{game.Ground: "⬤", game.Upper: "◆"}
	holdSyms = [...]string{game.Ground: "┃", game.Upper: "┇"}
	barSyms  = [...]string{game.Ground: "-", game.Upper: "="}

	groundColors = [...]color.RGBA{
		game.Severance: {255, 255, 255, 255},
		game.Clean:     {0, 236, 236, 255},
		game.Trace:     {0, 236, 128, 255},
		game.Fracture:  {236, 195, 0, 255},
		game.Ruin:      {236, 128, 0, 255},
	}
	upperColors = [...]color.RGBA{
		game.Severance: {255, 255, 255, 255},
		game.Clean:     {173, 130, 255, 255},
		game.Trace:     {106, 0, 236, 255},
		game.Fracture:  {236, 0, 106, 255},
		game.Ruin:      {236, 30, 0, 255},
	}

	noteColors = map[int]color.RGBA{
		1:  {236, 30, 0, 255},    // 1/4 red
		2:  {0, 118, 236, 255},   // 1/8 blue
		3:  {106, 0, 236, 255},   // 1/12 purple
		4:  {236, 195, 0, 255},   // 1/16 yellow
		6:  {236, 0, 106, 255},   // 1/24 pink
		8:  {236, 128, 0, 255},   // 1/32 orange
		12: {173, 236, 236, 255}, // 1/48 light blue
		16: {0, 236, 128, 255},   // 1/64 green
		48: {110, 147, 89, 255},  // 1/192 olive
		-1: {255, 255, 255, 255}, // other white
	}
)

func getNoteColor(d int) color.RGBA {
	col, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return col
}
