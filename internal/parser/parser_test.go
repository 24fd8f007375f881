package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/testdata"
)

func TestReadChart(t *testing.T) {
	var p Parser = &DefaultParser{}
	charts, err := p.Read(testdata.GetChart())
	require.NoError(t, err)
	require.Len(t, charts, 2, "pump-single is not a supported chart type")

	single := charts[0]
	assert.Equal(t, "Beginner", single.Difficulty.Name)
	assert.Equal(t, "1", single.Difficulty.Msd)
	assert.EqualValues(t, 4, single.Difficulty.NKeys)
	assert.Equal(t, 120.0, single.BPM)
	assert.Equal(t, 250*time.Millisecond, single.Offset)
	assert.EqualValues(t, 4, single.NoteCount)
	assert.EqualValues(t, 1, single.HoldCount)
	assert.EqualValues(t, 1, single.MineCount)

	want := []*game.ChartNote{
		{Index: 0, Denom: 1, Beat: 0},
		{Index: 1, Denom: 1, Beat: 1},
		{Index: 0, Denom: 1, Beat: 2, HoldBeats: 2},
		{Index: 2, Denom: 1, Beat: 5},
		{Index: 3, Denom: 1, Beat: 6},
	}
	if diff := cmp.Diff(want, single.Notes); diff != "" {
		t.Errorf("notes (-want +got)\n%s", diff)
	}
	assert.Equal(t, 6.0, single.LastBeat())

	double := charts[1]
	assert.Equal(t, "Hard", double.Difficulty.Name)
	require.Len(t, double.Notes, 1)
	assert.Equal(t, &game.ChartNote{Index: 7, Denom: 1, Beat: 2}, double.Notes[0])
}

func TestVariableBPM(t *testing.T) {
	p := &DefaultParser{}
	_, err := p.Read(strings.NewReader("#OFFSET:0;\n#BPMS:0=120,8=140;\n"))
	assert.True(t, errors.Is(err, ErrVariableBPM))

	charts, err := p.Read(strings.NewReader("#OFFSET:0;\n#BPMS:0=150,8=150;\n"))
	require.NoError(t, err)
	assert.Empty(t, charts)

	_, err = p.Read(strings.NewReader("#OFFSET:0;\n"))
	assert.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	p := &DefaultParser{}
	_, err := p.Parse("does/not/exist.sm")
	assert.Error(t, err)
}
