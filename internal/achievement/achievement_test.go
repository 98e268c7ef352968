package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/state"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message, _ string) {
	r.messages = append(r.messages, message)
}

func totals(m map[string]int) Lookup {
	return func(s string) int { return m[s] }
}

func TestQualifies_AndSemantics(t *testing.T) {
	assert.False(t, Qualifies("a:10,b:5", totals(map[string]int{"a": 10, "b": 4})))
	assert.True(t, Qualifies("a:10,b:5", totals(map[string]int{"a": 10, "b": 5})))
	assert.True(t, Qualifies(" a : 10 , , b:5 ", totals(map[string]int{"a": 11, "b": 9})))
}

func TestQualifies_MalformedNeverMatches(t *testing.T) {
	rich := totals(map[string]int{"a": 1000})
	for _, c := range []string{"", "a", "a:", ":1", "a:x", "a:1:2", "a:NaN", "a:-Inf", "a:1_000"} {
		assert.False(t, Qualifies(c, rich), "criteria %q", c)
	}
}

func TestEvaluate_NonNumericCriteriaNeverUnlock(t *testing.T) {
	list := []model.Achievement{
		{ID: "1", Name: "Nan", Criteria: "x:NaN"},
		{ID: "2", Name: "Inf", Criteria: "x:-infinity"},
	}

	res := Evaluate(list, totals(nil), model.DefaultPrestigeSettings(), fixedNow)

	assert.Empty(t, res.Unlocked)
	assert.Zero(t, res.PrestigeDelta)
}

func TestEvaluate_UnlocksWithDefaultPrestige(t *testing.T) {
	list := []model.Achievement{{ID: "1", Name: "A", Criteria: "x:100"}}

	res := Evaluate(list, totals(map[string]int{"x": 100}), model.DefaultPrestigeSettings(), fixedNow)

	require.Len(t, res.Unlocked, 1)
	assert.True(t, res.Achievements[0].Earned)
	require.NotNil(t, res.Achievements[0].EarnedDate)
	assert.Equal(t, fixedNow, *res.Achievements[0].EarnedDate)
	assert.Equal(t, 10, res.PrestigeDelta)
	assert.False(t, list[0].Earned, "input must not be mutated")
}

func TestEvaluate_UsesOwnPrestigeAndSumsDelta(t *testing.T) {
	list := []model.Achievement{
		{ID: "1", Criteria: "x:10", PrestigePoints: 25},
		{ID: "2", Criteria: "x:20"},
		{ID: "3", Criteria: "x:1000", PrestigePoints: 99},
	}

	res := Evaluate(list, totals(map[string]int{"x": 50}), model.DefaultPrestigeSettings(), fixedNow)

	assert.Len(t, res.Unlocked, 2)
	assert.Equal(t, 35, res.PrestigeDelta)
	assert.False(t, res.Achievements[2].Earned)
}

func TestEvaluate_PrestigeDisabled(t *testing.T) {
	list := []model.Achievement{{ID: "1", Criteria: "x:1", PrestigePoints: 5}}
	settings := model.PrestigeSettings{Enabled: false, PointsPerAchievement: 10}

	res := Evaluate(list, totals(map[string]int{"x": 1}), settings, fixedNow)

	assert.Len(t, res.Unlocked, 1)
	assert.Equal(t, 0, res.PrestigeDelta)
}

func TestEvaluate_Idempotent(t *testing.T) {
	list := []model.Achievement{{ID: "1", Criteria: "x:1"}}
	lookup := totals(map[string]int{"x": 5})

	first := Evaluate(list, lookup, model.DefaultPrestigeSettings(), fixedNow)
	second := Evaluate(first.Achievements, lookup, model.DefaultPrestigeSettings(), fixedNow.Add(time.Hour))

	assert.Equal(t, first.Achievements, second.Achievements)
	assert.Empty(t, second.Unlocked)
	assert.Equal(t, 0, second.PrestigeDelta)
}

func TestEvaluate_NeverRevokes(t *testing.T) {
	earned := fixedNow
	list := []model.Achievement{{ID: "1", Criteria: "x:100", Earned: true, EarnedDate: &earned}}

	res := Evaluate(list, totals(map[string]int{"x": -50}), model.DefaultPrestigeSettings(), fixedNow)

	assert.True(t, res.Achievements[0].Earned)
}

func TestEvaluator_Check(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryKV()
	st, err := state.Open(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, st.AddAchievement(ctx, model.Achievement{ID: "a1", Name: "A", Criteria: "x:100"}))
	require.NoError(t, st.AddAchievement(ctx, model.Achievement{ID: "a2", Name: "B", Criteria: "x:50", PrestigePoints: 15}))
	require.NoError(t, st.AppendLog(ctx, model.LogEntry{ID: "l1", Points: model.Points{"x": 100}}))

	notifier := &recordingNotifier{}
	ev := NewEvaluator(fixedClock{}, notifier)

	res, err := ev.Check(ctx, st)
	require.NoError(t, err)
	assert.Len(t, res.Unlocked, 2)
	assert.Equal(t, 25, st.Prestige())
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "25 prestige points")
	assert.Equal(t, 1, kv.Saves(state.KeyAchievements)-2, "one collection save for both unlocks")
	assert.Equal(t, 1, kv.Saves(state.KeyPrestigePoints), "prestige added once")

	res, err = ev.Check(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, res.Unlocked)
	assert.Equal(t, 25, st.Prestige())
	assert.Len(t, notifier.messages, 1)
}

func TestEvaluator_CheckWithoutNotifier(t *testing.T) {
	ctx := context.Background()
	st, err := state.Open(ctx, state.NewMemoryKV())
	require.NoError(t, err)
	require.NoError(t, st.AddAchievement(ctx, model.Achievement{ID: "a1", Criteria: "x:1"}))
	require.NoError(t, st.AppendLog(ctx, model.LogEntry{ID: "l1", Points: model.Points{"x": 1}}))

	_, err = NewEvaluator(fixedClock{}, nil).Check(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 10, st.Prestige())
}
