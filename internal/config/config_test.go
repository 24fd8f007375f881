package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/rail/internal/game"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, CommandPlay, c.Command)
	assert.Equal(t, "", c.Directory)
	assert.Equal(t, 120.0, c.BPM)
	assert.Equal(t, game.DefaultWindows, c.Windows)
	assert.Equal(t, DefaultLanes, c.Lanes)
	assert.Equal(t, []rune("dfjk"), c.Runes())
	assert.True(t, c.AvoidRepeat)
	assert.Equal(t, 700*time.Millisecond, c.FirstRepeat)
	assert.Equal(t, 80*time.Millisecond, c.ReleaseAfter)
	assert.Equal(t, "tap", c.Form)
	assert.Equal(t, 4.0, c.ApproachBeatsAt(c.BPM))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("RAIL_BPM", "150")
	t.Setenv("RAIL_OFFSET", "-12ms")
	c, err := Parse([]string{"--offset", "8ms", "lanes"})
	require.NoError(t, err)
	assert.Equal(t, CommandLanes, c.Command)
	assert.Equal(t, 150.0, c.BPM)
	assert.Equal(t, 8*time.Millisecond, c.Offset, "flags win over the environment")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("RAIL_KEYS", "")
	require.NoError(t, os.Unsetenv("RAIL_KEYS"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("RAIL_KEYS=asdf\n"), 0o600))
	require.NoError(t, LoadEnv(file))

	c, err := Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "asdf", c.Keys)

	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestParseRejectsWindows(t *testing.T) {
	_, err := Parse([]string{"--clean", "20ms"})
	assert.True(t, errors.Is(err, ErrWindows))

	_, err = Parse([]string{"--bpm", "0"})
	assert.Error(t, err)

	_, err = Parse([]string{"--form", "splash"})
	assert.Error(t, err)
}

func TestLanesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lanes.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"kind": "ground", "spawn": {"x": 0, "z": 10}, "hit": {"x": 0}},
		{"kind": "upper", "spawn": {"x": 1, "y": 2, "z": 10}, "hit": {"x": 1, "y": 2}, "despawn": {"x": 1, "y": 2, "z": -2}}
	]`), 0o600))

	c, err := Parse([]string{"--lanes", file})
	require.NoError(t, err)
	require.Len(t, c.Lanes, 2)
	assert.Nil(t, c.Lanes[0].Despawn)
	assert.Equal(t, "upper", c.Lanes[1].Kind)
	assert.Equal(t, game.Vec3{X: 1, Y: 2, Z: -2}, *c.Lanes[1].Despawn)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"kind": "sky"}]`), 0o600))
	_, err = ReadLanes(bad)
	assert.Error(t, err)
}

func TestApproachFromSeconds(t *testing.T) {
	c, err := Parse([]string{"--approach", "2s", "--speed", "2", "--hold", "500ms"})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, c.ApproachBeatsAt(120), 1e-9)
	assert.InDelta(t, 1.0, c.HoldBeatsAt(120), 1e-9)

	c.Speed = 0
	assert.InDelta(t, 2e4*2, c.ApproachBeatsAt(120), 1e-6)
}
