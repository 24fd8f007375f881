package theme

import (
	"image/color"

	"git.lost.host/meutraa/rail/internal/game"
)

type Theme interface {
	RenderNote(kind game.LaneKind) string
	// NoteColor colours a note by the beat division it falls on.
	NoteColor(denom int) color.RGBA
	RenderHold(kind game.LaneKind) string
	RenderHitField(kind game.LaneKind) string
	RenderMeasure(denom int) string

	// TierColor is the hit flash colour of a judgement. ok is false when the
	// flash keeps its own colour.
	TierColor(kind game.LaneKind, tier game.Tier) (c color.RGBA, ok bool)
}
