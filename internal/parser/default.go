package parser

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/game"
)

// DefaultParser reads StepMania .sm files.
type DefaultParser struct{}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

func isHead(c byte) bool {
	return c == '2' || c == '4'
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	defer f.Close()
	charts, err := p.Read(f)
	if nil != err {
		return nil, fmt.Errorf("unable to parse %v: %w", file, err)
	}
	return charts, nil
}

// bpm reads the #BPMS value. Several entries are allowed only if they all
// agree.
func (p *DefaultParser) bpm(value string) (float64, error) {
	value = strings.ReplaceAll(value, "\n", "")
	bpm := 0.0
	for _, entry := range strings.Split(strings.TrimSuffix(value, ";"), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		as := strings.Split(entry, "=")
		if len(as) != 2 {
			return 0, fmt.Errorf("malformed bpm entry %q", entry)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
		if nil != err {
			return 0, err
		}
		if bpm != 0 && v != bpm {
			return 0, ErrVariableBPM
		}
		bpm = v
	}
	if bpm <= 0 {
		return 0, errors.New("chart has no bpm")
	}
	return bpm, nil
}

func (p *DefaultParser) Read(r io.Reader) ([]*game.Chart, error) {
	data, err := io.ReadAll(r)
	if nil != err {
		return nil, err
	}

	str := strings.ReplaceAll(string(data), "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]
	difficulties := []game.Difficulty{}
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		chartType := strings.TrimSpace(lines[1])
		chartType = strings.TrimSuffix(chartType, ":")
		nKeys, ok := game.NKeyMap[chartType]
		if !ok {
			continue
		}
		difficulties = append(difficulties, game.Difficulty{
			Name:    strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
			Msd:     strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"),
			Section: lines[6],
			NKeys:   nKeys,
		})
	}

	offset := 0.0
	bpm := 0.0
	for _, mdl := range strings.Split(meta, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		if strings.HasPrefix(mdl, "OFFSET:") {
			mdl = strings.TrimPrefix(mdl, "OFFSET:")
			mdl = strings.TrimSuffix(mdl, ";")
			offs, err := strconv.ParseFloat(strings.TrimSpace(mdl), 64)
			if nil != err {
				return nil, err
			}
			offset = -offs
		} else if strings.HasPrefix(mdl, "BPMS:") {
			bpm, err = p.bpm(strings.TrimPrefix(mdl, "BPMS:"))
			if nil != err {
				return nil, err
			}
		}
	}
	if bpm == 0 {
		return nil, errors.New("chart has no bpm")
	}

	charts := []*game.Chart{}
	for _, difficulty := range difficulties {
		charts = append(charts, p.chart(difficulty, bpm, offset))
	}
	return charts, nil
}

func (p *DefaultParser) chart(difficulty game.Difficulty, bpm, offset float64) *game.Chart {
	notes := []*game.ChartNote{}
	var noteCount, holdCount, mineCount int64
	heads := map[int]*game.ChartNote{}

	blocks := strings.Split(strings.SplitN(difficulty.Section, ";", 2)[0], ",")
	for measure, block := range blocks {
		lines := []string{}
		for _, l := range strings.Split(block, "\n") {
			if i := strings.Index(l, "//"); i >= 0 {
				l = l[:i]
			}
			l = strings.TrimSpace(l)
			if len(l) == int(difficulty.NKeys) {
				lines = append(lines, l)
			}
		}

		// Beat count is 4 per block
		lineCount := int64(len(lines))
		for i, line := range lines {
			r := big.NewRat(int64(i*4), lineCount)
			denom := r.Denom().Int64()
			beat := float64(measure*4) + 4*float64(i)/float64(lineCount)

			for col := 0; col < len(line); col++ {
				c := line[col]
				switch {
				case c == '1' || isHead(c):
					n := &game.ChartNote{Index: uint8(col), Denom: int(denom), Beat: beat}
					notes = append(notes, n)
					noteCount++
					if isHead(c) {
						heads[col] = n
					}
				case c == '3':
					// The tail closes the last open head in this column.
					if head, ok := heads[col]; ok {
						head.HoldBeats = beat - head.Beat
						holdCount++
						delete(heads, col)
					}
				case c == 'M':
					mineCount++
				}
			}
		}
	}

	return &game.Chart{
		Notes:      notes,
		NoteCount:  noteCount,
		HoldCount:  holdCount,
		MineCount:  mineCount,
		Difficulty: difficulty,
		BPM:        bpm,
		Offset:     clock.Seconds(offset),
	}
}
