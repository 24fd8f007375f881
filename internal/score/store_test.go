package score

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/judge"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	store, err := Open(path)
	require.NoError(t, err)

	first := &DefaultScorer{}
	first.Judged(judge.Event{Lane: 1, Tier: game.Clean, Delta: 50 * time.Millisecond})
	first.Judged(judge.Event{Lane: 0, Part: judge.HoldTail, Tier: game.Miss, Auto: true, Delta: 300 * time.Millisecond})
	second := &DefaultScorer{}
	second.Judged(judge.Event{Lane: 0, Tier: game.Severance})

	sum := Sum("random 120bpm seed 7")
	played := time.Unix(1700000000, 0)
	id1, err := store.Save(sum, 120, played, first)
	require.NoError(t, err)
	id2, err := store.Save(sum, 120, played.Add(time.Minute), second)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	_, err = store.Save(Sum("other"), 90, played, second)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs the migrations again without error.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	histories, err := store.Load(sum)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, id1, histories[0].ID)
	assert.Equal(t, 1, histories[0].MaxCombo)
	assert.True(t, played.Equal(histories[0].Played))
	assert.InDelta(t, 50, histories[0].MeanMs, 1e-9)
	assert.Equal(t, []judge.Event{
		{Lane: 0, Part: judge.HoldTail, Tier: game.Miss, Auto: true, Delta: 300 * time.Millisecond},
		{Lane: 1, Tier: game.Clean, Delta: 50 * time.Millisecond},
	}, histories[0].Events)
	assert.Equal(t, id2, histories[1].ID)

	none, err := store.Load(Sum("never played"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
