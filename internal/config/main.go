package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/alecthomas/kingpin.v2"

	"git.lost.host/meutraa/rail/internal/game"
)

// ErrWindows is returned for hit windows that are not strictly increasing.
var ErrWindows = game.ErrWindows

const (
	CommandPlay  = "play"
	CommandLanes = "lanes"
)

// Lane is one entry of the lanes file. Despawn is optional.
type Lane struct {
	Kind    string     `json:"kind"`
	Spawn   *game.Vec3 `json:"spawn"`
	Hit     *game.Vec3 `json:"hit"`
	Despawn *game.Vec3 `json:"despawn,omitempty"`
}

// DefaultLanes are four ground lanes, 20 units long with a 5 unit tail.
var DefaultLanes = []Lane{
	{Kind: "ground", Spawn: &game.Vec3{X: -1.5, Z: 20}, Hit: &game.Vec3{X: -1.5}, Despawn: &game.Vec3{X: -1.5, Z: -5}},
	{Kind: "ground", Spawn: &game.Vec3{X: -0.5, Z: 20}, Hit: &game.Vec3{X: -0.5}, Despawn: &game.Vec3{X: -0.5, Z: -5}},
	{Kind: "ground", Spawn: &game.Vec3{X: 0.5, Z: 20}, Hit: &game.Vec3{X: 0.5}, Despawn: &game.Vec3{X: 0.5, Z: -5}},
	{Kind: "ground", Spawn: &game.Vec3{X: 1.5, Z: 20}, Hit: &game.Vec3{X: 1.5}, Despawn: &game.Vec3{X: 1.5, Z: -5}},
}

type Config struct {
	Command   string
	Directory string // song and chart, empty plays random notes to a metronome

	BPM    float64
	Offset time.Duration // added to every judged delta
	Delay  time.Duration // silence before the song starts

	ApproachBeats float64
	Approach      time.Duration // when set, overrides ApproachBeats
	Speed         float64       // divides Approach
	IntervalBeats float64
	HoldBeats     float64
	Hold          time.Duration // when set, overrides HoldBeats
	Form          string
	HoldRatio     float64
	AvoidRepeat   bool
	GroundOnly    bool

	Windows        game.Windows
	EmptyOnRelease bool

	LanesFile string
	Lanes     []Lane
	Keys      string

	FirstRepeat  time.Duration
	ReleaseAfter time.Duration
	Evdev        string
	MIDIPort     string
	MIDIBase     uint8
	Serial       string
	Baud         int

	Seed        uint64
	DB          string
	Report      string
	Log         string
	FramePeriod time.Duration
}

// LoadEnv loads .env style files into the environment. Without arguments
// it loads ./.env if there is one.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func newApp(c *Config) *kingpin.Application {
	app := kingpin.New("rail", "Lane rhythm game on the terminal.")
	app.Version("0.3.0")

	app.Flag("bpm", "Tempo of random sessions, charts bring their own").Default("120").Envar("RAIL_BPM").Float64Var(&c.BPM)
	app.Flag("offset", "Input offset, added to every hit delta").Default("0ms").Short('o').Envar("RAIL_OFFSET").DurationVar(&c.Offset)
	app.Flag("delay", "Start delay").Default("1.5s").Short('d').Envar("RAIL_DELAY").DurationVar(&c.Delay)

	app.Flag("approach-beats", "Beats from spawn to hit").Default("4").Envar("RAIL_APPROACH_BEATS").Float64Var(&c.ApproachBeats)
	app.Flag("approach", "Time from spawn to hit, overrides --approach-beats").Default("0s").Envar("RAIL_APPROACH").DurationVar(&c.Approach)
	app.Flag("speed", "Note speed modifier for --approach").Default("1").Short('s').Envar("RAIL_SPEED").Float64Var(&c.Speed)
	app.Flag("interval", "Beats between random notes").Default("1").Envar("RAIL_INTERVAL").Float64Var(&c.IntervalBeats)
	app.Flag("hold-beats", "Length of random holds in beats").Default("2").Envar("RAIL_HOLD_BEATS").Float64Var(&c.HoldBeats)
	app.Flag("hold", "Length of random holds, overrides --hold-beats").Default("0s").Envar("RAIL_HOLD").DurationVar(&c.Hold)
	app.Flag("form", "Random note form: tap, hold or mixed").Default("tap").Envar("RAIL_FORM").EnumVar(&c.Form, "tap", "hold", "mixed")
	app.Flag("hold-ratio", "Chance of a hold in mixed form").Default("0.25").Envar("RAIL_HOLD_RATIO").Float64Var(&c.HoldRatio)
	app.Flag("avoid-repeat", "Redraw once when the same lane comes up twice").Default("true").Envar("RAIL_AVOID_REPEAT").BoolVar(&c.AvoidRepeat)
	app.Flag("ground-only", "Only spawn on ground lanes").Envar("RAIL_GROUND_ONLY").BoolVar(&c.GroundOnly)

	app.Flag("severance", "Severance window").Default("35ms").Envar("RAIL_SEVERANCE").DurationVar(&c.Windows.Severance)
	app.Flag("clean", "Clean window").Default("75ms").Envar("RAIL_CLEAN").DurationVar(&c.Windows.Clean)
	app.Flag("trace", "Trace window").Default("120ms").Envar("RAIL_TRACE").DurationVar(&c.Windows.Trace)
	app.Flag("fracture", "Fracture window").Default("170ms").Envar("RAIL_FRACTURE").DurationVar(&c.Windows.Fracture)
	app.Flag("ruin", "Ruin window, anything later is a miss").Default("220ms").Envar("RAIL_RUIN").DurationVar(&c.Windows.Ruin)
	app.Flag("empty-on-release", "Report releases that end no hold").Envar("RAIL_EMPTY_ON_RELEASE").BoolVar(&c.EmptyOnRelease)

	app.Flag("lanes", "JSON lanes file").Short('l').Envar("RAIL_LANES").StringVar(&c.LanesFile)
	app.Flag("keys", "Keys, one per lane").Default("dfjk").Short('k').Envar("RAIL_KEYS").StringVar(&c.Keys)
	app.Flag("first-repeat", "Terminal key release without a first repeat").Default("700ms").Envar("RAIL_FIRST_REPEAT").DurationVar(&c.FirstRepeat)
	app.Flag("release-after", "Terminal key release without a further repeat").Default("80ms").Envar("RAIL_RELEASE_AFTER").DurationVar(&c.ReleaseAfter)
	app.Flag("evdev", "Read keys from this input event device").Envar("RAIL_EVDEV").StringVar(&c.Evdev)
	app.Flag("midi", "Read notes from the MIDI input port with this name").Envar("RAIL_MIDI").StringVar(&c.MIDIPort)
	app.Flag("midi-base", "MIDI key of lane 0").Default("60").Envar("RAIL_MIDI_BASE").Uint8Var(&c.MIDIBase)
	app.Flag("serial", "Serial port of a lane controller").Envar("RAIL_SERIAL").StringVar(&c.Serial)
	app.Flag("baud", "Serial baud rate").Default("115200").Envar("RAIL_BAUD").IntVar(&c.Baud)

	app.Flag("seed", "Random seed, 0 picks one").Default("0").Envar("RAIL_SEED").Uint64Var(&c.Seed)
	app.Flag("db", "Score database").Default("./scores.db").Envar("RAIL_DB").StringVar(&c.DB)
	app.Flag("report", "Write an HTML report here").Envar("RAIL_REPORT").StringVar(&c.Report)
	app.Flag("log", "Log file, the terminal is used for rendering").Envar("RAIL_LOG").StringVar(&c.Log)
	app.Flag("frame-period", "Render frame period").Default("4ms").Short('p').Envar("RAIL_FRAME_PERIOD").DurationVar(&c.FramePeriod)

	play := app.Command(CommandPlay, "Play a chart or random notes").Default()
	play.Arg("directory", "Song/chart directory").ExistingDirVar(&c.Directory)
	app.Command(CommandLanes, "Print lane distances, travel times and speeds")

	return app
}

// Parse reads the command line. Environment variables fill in flags that
// are not given.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	app := newApp(c)
	command, err := app.Parse(args)
	if nil != err {
		return nil, err
	}
	c.Command = command

	if err := c.Windows.Validate(); nil != err {
		return nil, err
	}
	if c.BPM <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", c.BPM)
	}

	c.Lanes = DefaultLanes
	if c.LanesFile != "" {
		lanes, err := ReadLanes(c.LanesFile)
		if nil != err {
			return nil, err
		}
		c.Lanes = lanes
	}
	return c, nil
}

// ReadLanes loads a lanes file.
func ReadLanes(file string) ([]Lane, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read lanes file: %w", err)
	}
	var lanes []Lane
	if err := json.Unmarshal(data, &lanes); nil != err {
		return nil, fmt.Errorf("unable to parse lanes file: %w", err)
	}
	for i, l := range lanes {
		if _, err := game.ParseLaneKind(l.Kind); nil != err {
			return nil, fmt.Errorf("lane %d: %w", i, err)
		}
	}
	return lanes, nil
}

// ApproachBeatsAt is the approach length in beats at bpm. An explicit
// approach time is divided by the speed modifier first.
func (c *Config) ApproachBeatsAt(bpm float64) float64 {
	if c.Approach <= 0 {
		return c.ApproachBeats
	}
	seconds := c.Approach.Seconds() / math.Max(1e-4, c.Speed)
	return seconds * bpm / 60
}

// HoldBeatsAt is the random hold length in beats at bpm.
func (c *Config) HoldBeatsAt(bpm float64) float64 {
	if c.Hold <= 0 {
		return c.HoldBeats
	}
	return c.Hold.Seconds() * bpm / 60
}

// Runes are the lane keys.
func (c *Config) Runes() []rune {
	return []rune(c.Keys)
}
