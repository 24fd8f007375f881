package game

import "fmt"

type Difficulty struct {
	Name    string
	Msd     string
	Section string
	NKeys   uint8
}

var NKeyMap = map[string]uint8{
	"dance-single": 4,
	"dance-solo":   6,
	"dance-double": 8,
}

// LaneKind separates floor lanes from raised lanes. Themes colour the two
// differently and the spawner can be limited to ground lanes.
type LaneKind uint8

const (
	Ground LaneKind = iota
	Upper
)

func (k LaneKind) String() string {
	if k == Upper {
		return "upper"
	}
	return "ground"
}

func ParseLaneKind(s string) (LaneKind, error) {
	switch s {
	case "", "ground":
		return Ground, nil
	case "upper":
		return Upper, nil
	}
	return Ground, fmt.Errorf("unknown lane kind %q", s)
}
