package gamefile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/engine"
	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
	"github.com/roach88/gamify/internal/testutil"
)

func newAPI(t *testing.T) *gameapi.API {
	t.Helper()
	st, err := state.Open(context.Background(), state.NewMemoryKV())
	require.NoError(t, err)
	clock := testutil.NewFrozenClock(testutil.Epoch)
	rt := script.NewRuntime(script.NewLuaHost())
	eng := engine.New(st, rt, engine.WithClock(clock), engine.WithIDs(testutil.NewSequenceIDs("ev")))
	return gameapi.New(st, eng, rt, gameapi.WithClock(clock), gameapi.WithIDs(testutil.NewSequenceIDs("")))
}

const game = `
reward: Cinema: criteria: "fun:10"
achievement: Fun: {criteria: "fun:5", prestige: 20}
recurring: Play: points: "fun:5"
script: cheer: {
	events: ["onAchievementUnlock"]
	code:   "return 1"
}
`

func TestApply_CreatesThenMerges(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)
	l := newLoader(t)
	def, err := l.CompileString(game, "game.cue", "")
	require.NoError(t, err)

	changes, err := Apply(ctx, api, def)
	require.NoError(t, err)
	assert.Equal(t, []Change{
		{Kind: "reward", Name: "Cinema", Action: Created},
		{Kind: "achievement", Name: "Fun", Action: Created},
		{Kind: "recurring", Name: "Play", Action: Created},
		{Kind: "script", Name: "cheer", Action: Created},
	}, changes)

	changes, err = Apply(ctx, api, def)
	require.NoError(t, err)
	assert.Equal(t, []Change{
		{Kind: "reward", Name: "Cinema", Action: Unchanged},
		{Kind: "achievement", Name: "Fun", Action: Updated},
		{Kind: "recurring", Name: "Play", Action: Unchanged},
		{Kind: "script", Name: "cheer", Action: Updated},
	}, changes)

	assert.Len(t, api.Rewards(), 1)
	assert.Len(t, api.Achievements(), 1)
	assert.Len(t, api.Recurrings(), 1)
	assert.Len(t, api.Scripts(), 1)
}

func TestApply_UnlocksAlreadySatisfiedAchievements(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)
	_, err := api.AddAction(ctx, "play", "", "fun:6")
	require.NoError(t, err)

	def, err := newLoader(t).CompileString(game, "game.cue", "")
	require.NoError(t, err)
	_, err = Apply(ctx, api, def)
	require.NoError(t, err)

	assert.True(t, api.IsUnlocked("Fun"))
	assert.Equal(t, 20, api.PrestigePoints())
}

func TestApply_KeepsEarnedStateOnEdit(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)
	l := newLoader(t)
	def, err := l.CompileString(game, "game.cue", "")
	require.NoError(t, err)
	_, err = Apply(ctx, api, def)
	require.NoError(t, err)
	_, err = api.AddAction(ctx, "play", "", "fun:5")
	require.NoError(t, err)
	require.True(t, api.IsUnlocked("Fun"))

	edited, err := l.CompileString(`achievement: Fun: {criteria: "fun:500", description: "harder"}`, "game.cue", "")
	require.NoError(t, err)
	_, err = Apply(ctx, api, edited)
	require.NoError(t, err)

	ach, ok := api.Achievement("Fun")
	require.True(t, ok)
	assert.True(t, ach.Earned)
	assert.Equal(t, "harder", ach.Description)
	assert.Equal(t, 20, api.PrestigePoints())
}
