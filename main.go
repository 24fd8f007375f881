package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tebeka/atexit"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"git.lost.host/meutraa/rail/internal/clock"
	"git.lost.host/meutraa/rail/internal/config"
	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/parser"
	"git.lost.host/meutraa/rail/internal/render"
	"git.lost.host/meutraa/rail/internal/report"
	"git.lost.host/meutraa/rail/internal/score"
	"git.lost.host/meutraa/rail/internal/theme"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Println(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run(args []string) error {
	if err := config.LoadEnv(); nil != err {
		return fmt.Errorf("unable to load .env: %w", err)
	}
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}

	if cfg.Log != "" {
		f, err := os.OpenFile(cfg.Log, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if nil != err {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		atexit.Register(func() { f.Close() })
		log.SetOutput(f)
	}

	if cfg.Command == config.CommandLanes {
		return printLanes(os.Stdout, cfg)
	}

	// Ensure our Default implementations are used as interfaces
	var r render.Renderer = &render.DefaultRenderer{}
	p := &Program{
		Config:   cfg,
		Parser:   &parser.DefaultParser{},
		Scorer:   &score.DefaultScorer{},
		Theme:    &theme.DefaultTheme{},
		Renderer: r,
	}

	store, err := score.Open(cfg.DB)
	if nil != err {
		return err
	}
	atexit.Register(func() { store.Close() })

	if err := p.Init(); nil != err {
		return err
	}
	if err := p.OpenInputs(); nil != err {
		p.Close()
		return err
	}
	atexit.Register(p.Close)

	// Clear the screen and hide the cursor
	if err := r.Init(); nil != err {
		return fmt.Errorf("unable to initialise terminal: %w", err)
	}
	// Restore the terminal state on every exit path
	atexit.Register(func() { r.Deinit() })

	if err := p.Start(); nil != err {
		r.Deinit()
		return err
	}
	p.Run()

	if err := r.Deinit(); nil != err {
		log.Println("unable to restore terminal", err)
	}
	p.Close()
	return p.Finish(os.Stdout, store)
}

// printLanes prints each lane's spawn to hit distance, travel time and speed.
func printLanes(w io.Writer, cfg *config.Config) error {
	travel := clock.Seconds(cfg.ApproachBeatsAt(cfg.BPM) * 60 / cfg.BPM)
	if travel < game.MinTravel {
		travel = game.MinTravel
	}
	for i, l := range cfg.Lanes {
		if nil == l.Spawn || nil == l.Hit {
			fmt.Fprintf(w, "%2v) %-6v  missing spawn or hit point\n", i, l.Kind)
			continue
		}
		distance := game.Distance(*l.Spawn, *l.Hit)
		fmt.Fprintf(w, "%2v) %-6v  distance %8.3f  travel %8v  speed %8.3f/s\n",
			i, l.Kind, distance, travel.Round(time.Millisecond), distance/travel.Seconds())
	}
	return nil
}

func writeReport(w io.Writer, p *Program, summary score.Summary) error {
	title := "rail random session"
	if nil != p.chart {
		title = fmt.Sprintf("rail %v (%v)", p.chart.Difficulty.Name, p.chart.Difficulty.Msd)
	}
	return report.Write(w, title, summary, p.Config.Windows)
}
