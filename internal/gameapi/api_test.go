package gameapi

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/engine"
	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
	"github.com/roach88/gamify/internal/testutil"
)

type notification struct {
	Message string
	Kind    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, message, kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{message, kind})
}

type fixture struct {
	api      *API
	store    *state.Store
	clock    *testutil.StepClock
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := state.Open(ctx, state.NewMemoryKV())
	require.NoError(t, err)

	clock := testutil.NewFrozenClock(testutil.Epoch)
	ids := testutil.NewSequenceIDs("")
	rt := script.NewRuntime(script.NewLuaHost())
	eng := engine.New(st, rt,
		engine.WithIDs(testutil.NewSequenceIDs("ev")),
		engine.WithClock(clock),
		engine.WithFlowGenerator(testutil.NewFlowSequence("")),
	)
	notifier := &recordingNotifier{}
	api := New(st, eng, rt,
		WithIDs(ids),
		WithClock(clock),
		WithNotifier(notifier),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	return &fixture{api: api, store: st, clock: clock, notifier: notifier}
}

func (f *fixture) eventNames() []string {
	var names []string
	for _, ev := range f.store.History() {
		names = append(names, ev.Name)
	}
	return names
}

func (f *fixture) lastEvent(t *testing.T) model.Event {
	t.Helper()
	history := f.store.History()
	require.NotEmpty(t, history)
	return history[len(history)-1]
}

func (f *fixture) addScript(t *testing.T, name, code string, events ...string) model.Script {
	t.Helper()
	s, err := f.api.AddScript(context.Background(), ScriptInput{Name: name, Code: code, Events: events})
	require.NoError(t, err)
	return s
}

func (f *fixture) logAction(t *testing.T, pts string) {
	t.Helper()
	_, err := f.api.AddAction(context.Background(), "work", "", pts)
	require.NoError(t, err)
}

func at(d time.Duration) time.Time {
	return testutil.Epoch.Add(d)
}
