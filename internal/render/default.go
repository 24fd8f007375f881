package render

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type DefaultRenderer struct {
	// Out receives every frame, os.Stdout when nil.
	Out *os.File

	w            io.Writer
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    uint16
	Color   color.RGBA
	Content string
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) out() *os.File {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) writer() io.Writer {
	if nil != r.w {
		return r.w
	}
	return r.out()
}

func (r *DefaultRenderer) Init() error {
	state, err := term.MakeRaw(int(r.out().Fd()))
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Fprintf(r.writer(), "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.writer(), "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	state := r.restoreState
	r.restoreState = nil
	return term.Restore(int(r.out().Fd()), state)
}

func (r *DefaultRenderer) Size() (int, int, error) {
	return term.GetSize(int(r.out().Fd()))
}

func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[2J")
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, c color.RGBA, content string, frames int) {
	d := &decoration{
		X:       col,
		Y:       row,
		Color:   c,
		Content: content,
		Frames:  frames,
	}
	r.decorations = append(r.decorations, d)
	r.draw(d)
}

func (r *DefaultRenderer) draw(d *decoration) {
	if d.Color.A == 0 {
		r.Fill(d.Y, d.X, d.Content)
		return
	}
	r.FillColor(d.Y, d.X, d.Color, d.Content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		r.draw(d)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls render once per period until it returns false.
func (r *DefaultRenderer) RenderLoop(period time.Duration, render func(now time.Time) bool) {
	cont := true
	for cont {
		now := time.Now()
		deadline := now.Add(period)

		cont = render(now)

		r.tickDecorations()
		r.flush()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column uint16, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	if _, err := io.WriteString(r.writer(), r.buffer.String()); nil != err {
		log.Println("unable to write frame", err)
	}
	r.buffer.Reset()
}

// Row maps approach progress onto a screen row: 0 is spawnRow, 1 is hitRow,
// and past the hit the note keeps moving in the same direction.
func Row(progress float64, spawnRow, hitRow int) int {
	return spawnRow + int(math.Round(progress*float64(hitRow-spawnRow)))
}
