package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"

	"git.lost.host/meutraa/rail/internal/audio"
	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/config"
	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/input"
	"git.lost.host/meutraa/rail/internal/judge"
	"git.lost.host/meutraa/rail/internal/parser"
	"git.lost.host/meutraa/rail/internal/render"
	"git.lost.host/meutraa/rail/internal/schedule"
	"git.lost.host/meutraa/rail/internal/score"
	"git.lost.host/meutraa/rail/internal/session"
	"git.lost.host/meutraa/rail/internal/theme"
)

const (
	sampleRate  = beep.SampleRate(44100)
	audioBuffer = 40 * time.Millisecond

	// Time after the last chart note before the session ends.
	tailOut = 2 * time.Second
)

var (
	emptyColor = color.RGBA{128, 128, 128, 255}
	missColor  = color.RGBA{236, 30, 0, 255}
)

type cell struct {
	row, col uint16
}

type Program struct {
	Config   *config.Config
	Parser   parser.Parser
	Scorer   score.Scorer
	Theme    theme.Theme
	Renderer render.Renderer

	audioFile, chartFile string
	chart                *game.Chart
	sum                  string

	output  *audio.Output
	clock   *clock.Clock
	sampler *input.Sampler
	lanes   []*schedule.Lane
	kinds   []game.LaneKind
	session *session.Session
	end     time.Duration

	closers []func()
	quit    atomic.Bool

	// Screen layout
	width, height    int
	spawnRow, hitRow int
	columns          []int
	sideCol          int
	drawn            []cell
	lastJudgement    string
	approachBeats    float64
	started          time.Time
}

// newLanes builds a judge per configured lane.
func newLanes(cfg *config.Config, feedback judge.Feedback) ([]*schedule.Lane, []game.LaneKind, error) {
	lanes := make([]*schedule.Lane, len(cfg.Lanes))
	kinds := make([]game.LaneKind, len(cfg.Lanes))
	for i, l := range cfg.Lanes {
		kind, err := game.ParseLaneKind(l.Kind)
		if nil != err {
			return nil, nil, fmt.Errorf("lane %d: %w", i, err)
		}
		kinds[i] = kind
		lanes[i] = &schedule.Lane{
			Index:   i,
			Kind:    kind,
			Spawn:   l.Spawn,
			Hit:     l.Hit,
			Despawn: l.Despawn,
			Judge: judge.New(judge.Config{
				Lane:           i,
				Windows:        cfg.Windows,
				Offset:         cfg.Offset,
				EmptyOnRelease: cfg.EmptyOnRelease,
			}, feedback),
		}
	}
	return lanes, kinds, nil
}

func (p *Program) findSong() error {
	if err := filepath.Walk(p.Config.Directory, func(path string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch {
		case audio.IsAudio(path):
			p.audioFile = path
		case strings.EqualFold(filepath.Ext(path), ".sm"):
			p.chartFile = path
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}

	if p.audioFile == "" || p.chartFile == "" {
		return errors.New("unable to find .sm and .mp3/.ogg/.wav file in given directory")
	}
	return nil
}

func (p *Program) Init() error {
	cfg := p.Config
	bpm := cfg.BPM

	if cfg.Directory != "" {
		if err := p.findSong(); nil != err {
			return err
		}
		charts, err := p.Parser.Parse(p.chartFile)
		if nil != err {
			return err
		}
		if len(charts) == 0 {
			return fmt.Errorf("no playable chart in %v", p.chartFile)
		}
		p.chart = charts[0]
		bpm = p.chart.BPM
		p.sum = score.Sum(p.chart.Difficulty.Section)
	} else {
		p.sum = score.Sum(fmt.Sprintf("random %v %v %v %v %v", bpm, cfg.IntervalBeats, cfg.Form, cfg.HoldRatio, len(cfg.Lanes)))
	}

	var src clock.Source
	output, err := audio.Open(sampleRate, audioBuffer)
	if nil != err {
		log.Println("unable to open audio output, timing from the wall clock", err)
		src = clock.NewWallSource()
	} else {
		p.output = output
		src = output
	}
	p.clock, err = clock.New(src, bpm)
	if nil != err {
		return err
	}

	feedback := judge.Multi{p.Scorer, p}
	if cfg.Log != "" {
		feedback = append(feedback, score.Log{})
	}
	p.lanes, p.kinds, err = newLanes(cfg, feedback)
	if nil != err {
		return err
	}

	p.approachBeats = cfg.ApproachBeatsAt(bpm)
	opts := schedule.Options{
		IntervalBeats: cfg.IntervalBeats,
		ApproachBeats: p.approachBeats,
		HoldBeats:     cfg.HoldBeatsAt(bpm),
		HoldRatio:     cfg.HoldRatio,
		AvoidRepeat:   cfg.AvoidRepeat,
		GroundOnly:    cfg.GroundOnly,
	}
	opts.Form, err = schedule.ParseForm(cfg.Form)
	if nil != err {
		return err
	}

	var sched *schedule.Scheduler
	if nil != p.chart {
		sched = schedule.NewChart(p.clock, p.lanes, p.chart, opts)
	} else {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		log.Println("random session seed", seed)
		sched = schedule.New(p.clock, p.lanes, opts, rand.New(rand.NewPCG(seed, seed>>1)))
	}
	p.session = session.New(p.clock, p.lanes, sched)
	p.sampler = input.NewSampler(len(p.lanes), 256)

	return p.Resize()
}

// Resize lays the lanes out across the terminal.
func (p *Program) Resize() error {
	width, height, err := p.Renderer.Size()
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	p.width, p.height = width, height
	p.spawnRow = 2
	p.hitRow = height - 4
	mid := width >> 1
	p.columns = make([]int, len(p.lanes))
	for i := range p.columns {
		p.columns[i] = mid + (2*i-(len(p.lanes)-1))*3
	}
	p.sideCol = 2
	p.drawn = p.drawn[:0]
	p.Renderer.Clear()
	return nil
}

// OpenInputs starts every configured input device.
func (p *Program) OpenInputs() error {
	cfg := p.Config
	kbd := &input.Keyboard{Keys: cfg.Runes(), FirstRepeat: cfg.FirstRepeat, ReleaseAfter: cfg.ReleaseAfter}

	if cfg.Evdev != "" {
		codes, err := input.EvdevCodes(cfg.Runes())
		if nil != err {
			return err
		}
		f, err := input.ReadEvdev(cfg.Evdev, codes, p.sampler)
		if nil != err {
			return fmt.Errorf("unable to open %v: %w", cfg.Evdev, err)
		}
		p.closers = append(p.closers, func() { f.Close() })
		// The terminal still reports the same keys, only quitting is left to it.
		kbd.Keys = nil
	}

	closeKeyboard, err := kbd.Run(p.sampler, func() { p.quit.Store(true) })
	if nil != err {
		return err
	}
	p.closers = append(p.closers, func() {
		if err := closeKeyboard(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	})

	if cfg.MIDIPort != "" {
		stop, err := input.ListenMIDI(cfg.MIDIPort, cfg.MIDIBase, p.sampler)
		if nil != err {
			return err
		}
		p.closers = append(p.closers, stop)
	}

	if cfg.Serial != "" {
		port, err := input.ReadSerial(cfg.Serial, cfg.Baud, p.sampler)
		if nil != err {
			return err
		}
		p.closers = append(p.closers, func() { port.Close() })
	}
	return nil
}

func (p *Program) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
}

// Start begins playback and anchors beat zero after the start delay.
func (p *Program) Start() error {
	delay := p.Config.Delay
	origin := p.clock.Now() + delay

	if nil != p.chart {
		streamer, format, err := audio.Decode(p.audioFile)
		if nil != err {
			return err
		}
		p.closers = append(p.closers, func() { streamer.Close() })
		if nil != p.output {
			p.output.Play(audio.Song(sampleRate, format, streamer, delay))
		}
		p.clock.StartAt(origin + p.chart.Offset)
		p.end = p.clock.InstantAtBeat(p.chart.LastBeat()) + tailOut
	} else {
		if nil != p.output {
			p.output.Play(audio.Delay(sampleRate, delay, audio.Metronome(sampleRate, p.clock.BPM())))
		}
		p.clock.StartAt(origin)
	}
	p.started = time.Now()
	return nil
}

// Judged adds a hit flash under the lane.
func (p *Program) Judged(ev judge.Event) {
	p.lastJudgement = ev.String()
	if ev.Lane < 0 || ev.Lane >= len(p.columns) {
		return
	}
	col, row := uint16(p.columns[ev.Lane]), uint16(p.hitRow+1)

	switch {
	case ev.Empty:
		p.Renderer.AddDecoration(col, row, emptyColor, "·", 30)
	case ev.Tier == game.Miss:
		p.Renderer.AddDecoration(col, row, missColor, "✗", 120)
	default:
		// A tier without its own colour keeps the terminal's.
		c, _ := p.Theme.TierColor(p.kinds[ev.Lane], ev.Tier)
		p.Renderer.AddDecoration(col, row, c, "◎", 60)
	}
}

// Update samples input and runs one frame.
func (p *Program) Update(now time.Duration) {
	p.session.Step(now, p.sampler.Sample())
}

// Done reports whether the render loop should stop.
func (p *Program) Done(now time.Duration) bool {
	if p.quit.Load() {
		return true
	}
	return nil != p.chart && p.session.Done() && now > p.end
}

func (p *Program) track(row, col int) (cell, bool) {
	if row < 1 || row > p.height || col < 1 || col > p.width {
		return cell{}, false
	}
	c := cell{uint16(row), uint16(col)}
	p.drawn = append(p.drawn, c)
	return c, true
}

func (p *Program) fill(row, col int, s string) {
	if c, ok := p.track(row, col); ok {
		p.Renderer.Fill(c.row, c.col, s)
	}
}

func (p *Program) fillColor(row, col int, rgba color.RGBA, s string) {
	if c, ok := p.track(row, col); ok {
		p.Renderer.FillColor(c.row, c.col, rgba, s)
	}
}

func (p *Program) Render(now time.Duration) {
	for _, c := range p.drawn {
		p.Renderer.Fill(c.row, c.col, " ")
	}
	p.drawn = p.drawn[:0]

	p.RenderStatic()
	p.RenderGame(now)
	p.RenderStats(now)
}

func (p *Program) RenderStatic() {
	for i, col := range p.columns {
		p.Renderer.Fill(uint16(p.hitRow), uint16(col), p.Theme.RenderHitField(p.kinds[i]))
	}
}

func (p *Program) RenderGame(now time.Duration) {
	// Beat lines in the gutter left of the first lane
	if len(p.columns) > 0 && p.approachBeats > 0 {
		beat := p.clock.CurrentBeat(now)
		gutter := p.columns[0] - 3
		for _, m := range game.Grid(beat, beat+p.approachBeats) {
			progress := 1 - (m.Beat-beat)/p.approachBeats
			row := render.Row(progress, p.spawnRow, p.hitRow)
			if row < p.hitRow {
				p.fill(row, gutter, p.Theme.RenderMeasure(m.Denom))
			}
		}
	}

	for _, n := range p.session.Notes() {
		lane := n.Lane()
		if lane >= len(p.columns) {
			continue
		}
		col, kind := p.columns[lane], p.kinds[lane]
		head := render.Row(n.Progress(now), p.spawnRow, p.hitRow)

		if h, ok := n.(*game.HoldNote); ok {
			tail := render.Row(h.TailProgress(now), p.spawnRow, p.hitRow)
			body := p.Theme.RenderHold(kind)
			if h.State() == game.HoldFailed {
				body = "\033[38;5;240m" + body + "\033[0m"
			}
			for row := tail; row < head; row++ {
				if row != p.hitRow {
					p.fill(row, col, body)
				}
			}
			if h.State() == game.HoldActive {
				continue
			}
		}
		if head != p.hitRow {
			p.fillColor(head, col, p.Theme.NoteColor(n.Snap()), p.Theme.RenderNote(kind))
		}
	}
}

func (p *Program) RenderStats(now time.Duration) {
	s := p.Scorer.Summary()
	lines := []string{
		fmt.Sprintf("   Beat:  %8.2f", p.clock.CurrentBeat(now)),
		fmt.Sprintf("  Combo:  %8v", s.Combo),
		fmt.Sprintf("    Max:  %8v", s.MaxCombo),
		fmt.Sprintf("   Mean:  %8.2f ms", s.MeanMs),
		fmt.Sprintf("  Stdev:  %8.2f ms", s.StdDevMs),
		fmt.Sprintf("  Empty:  %8v", s.Empty),
	}
	for _, t := range game.Tiers {
		lines = append(lines, fmt.Sprintf("%9s:  %6v", t, s.Count(t)))
	}
	if nil != p.chart {
		lines = append(lines,
			fmt.Sprintf("  Notes:  %8v", p.chart.NoteCount),
			fmt.Sprintf("  Holds:  %8v", p.chart.HoldCount),
			fmt.Sprintf("  Mines:  %8v", p.chart.MineCount),
		)
	}
	for i, l := range lines {
		p.fill(4+i, p.sideCol, l)
	}
	if p.lastJudgement != "" && len(p.columns) > 0 {
		p.fill(p.hitRow+2, p.columns[0]-3, fmt.Sprintf("%-40s", p.lastJudgement))
	}
}

// Run drives the render loop until the session ends or the player quits.
func (p *Program) Run() {
	p.Renderer.RenderLoop(p.Config.FramePeriod, func(time.Time) bool {
		now := p.clock.Now()
		p.Update(now)
		p.Render(now)
		return !p.Done(now)
	})
}

// Finish stores the performance and writes the report.
func (p *Program) Finish(w io.Writer, store *score.Store) error {
	summary := p.Scorer.Summary()
	fmt.Fprintf(w, "%d judged, max combo %d, mean %.2fms, stdev %.2fms\n",
		summary.Judged(), summary.MaxCombo, summary.MeanMs, summary.StdDevMs)
	for _, t := range game.Tiers {
		fmt.Fprintf(w, "%9s: %v\n", t, summary.Count(t))
	}

	if nil != store && summary.Judged() > 0 {
		id, err := store.Save(p.sum, p.clock.BPM(), p.started, p.Scorer)
		if nil != err {
			return err
		}
		histories, err := store.Load(p.sum)
		if nil != err {
			return err
		}
		fmt.Fprintf(w, "saved %v, %d plays of this chart\n", id, len(histories))
	}

	if p.Config.Report != "" {
		f, err := os.Create(p.Config.Report)
		if nil != err {
			return fmt.Errorf("unable to create report: %w", err)
		}
		defer f.Close()
		if err := writeReport(f, p, summary); nil != err {
			return err
		}
	}
	return nil
}
