package render

import (
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (columns, rows int, err error)
	// AddDecoration shows content for frames frames, coloured unless c is
	// fully transparent.
	AddDecoration(col, row uint16, c color.RGBA, content string, frames int)
	RenderLoop(period time.Duration, render func(now time.Time) bool)
	Fill(row, column uint16, message string)
	FillColor(row, column uint16, color color.RGBA, message string)
	Clear()
}
