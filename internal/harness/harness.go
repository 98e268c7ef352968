package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/roach88/gamify/internal/engine"
	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/gamefile"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
	"github.com/roach88/gamify/internal/store"
	"github.com/roach88/gamify/internal/testutil"
)

// Harness runs one scenario against a fresh game.
type Harness struct {
	store    *store.Store
	state    *state.Store
	session  *session
	notifier *recordingNotifier
}

// Run executes a scenario and returns the result. A non-nil error means the
// scenario could not be executed at all: a broken game file, a failing
// setup step or a storage failure. Failed expectations and assertions are
// reported in the result instead.
//
// Each scenario runs in a fresh in-memory database with a frozen clock at
// testutil.Epoch, sequential IDs and flow tokens, and a fixed random seed.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(ctx, scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	if err := h.prepare(scenario); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		if _, err := h.invoke(step); err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
	}
	for i, step := range scenario.Flow {
		out, err := h.invoke(step)
		for _, msg := range checkExpect(step.Expect, out, err) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}
	}

	result.Trace = traceFromHistory(h.state)
	result.Notifications = append(result.Notifications, h.notifier.messages...)

	actx := &AssertionContext{State: h.state, Notifications: result.Notifications}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario) (*Harness, error) {
	db, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	var stateOpts []state.Option
	if scenario.HistoryLimit > 0 {
		stateOpts = append(stateOpts, state.WithHistoryLimit(scenario.HistoryLimit))
	}
	st, err := state.Open(ctx, db, stateOpts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open state: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewFrozenClock(testutil.Epoch)
	rt := script.NewRuntime(script.NewLuaHost(), script.WithLogger(logger))

	engineOpts := []engine.Option{
		engine.WithIDs(testutil.NewSequenceIDs("ev")),
		engine.WithClock(clock),
		engine.WithFlowGenerator(testutil.NewFlowSequence("")),
		engine.WithLogger(logger),
	}
	if scenario.MaxDepth > 0 {
		engineOpts = append(engineOpts, engine.WithMaxDepth(scenario.MaxDepth))
	}
	if scenario.MaxSteps > 0 {
		engineOpts = append(engineOpts, engine.WithMaxSteps(scenario.MaxSteps))
	}
	eng := engine.New(st, rt, engineOpts...)

	notifier := &recordingNotifier{}
	api := gameapi.New(st, eng, rt,
		gameapi.WithIDs(testutil.NewSequenceIDs("")),
		gameapi.WithClock(clock),
		gameapi.WithNotifier(notifier),
		gameapi.WithRand(rand.New(rand.NewPCG(1, 2))),
		gameapi.WithLogger(logger),
	)

	return &Harness{
		store:    db,
		state:    st,
		notifier: notifier,
		session:  &session{ctx: ctx, api: api, clock: clock, notifier: notifier},
	}, nil
}

// prepare applies the game file and stores the inline scripts.
func (h *Harness) prepare(scenario *Scenario) error {
	if scenario.Game != "" {
		loader, err := gamefile.NewLoader()
		if err != nil {
			return err
		}
		def, err := loader.Load(scenario.Game)
		if err != nil {
			return fmt.Errorf("failed to load game: %w", err)
		}
		if _, err := gamefile.Apply(h.session.ctx, h.session.api, def); err != nil {
			return fmt.Errorf("failed to apply game: %w", err)
		}
	}
	for _, sc := range scenario.Scripts {
		_, err := h.session.api.AddScript(h.session.ctx, gameapi.ScriptInput{
			Name:        sc.Name,
			Description: sc.Description,
			Code:        sc.Code,
			Events:      sc.Events,
		})
		if err != nil {
			return fmt.Errorf("script %s: %w", sc.Name, err)
		}
	}
	return nil
}

func (h *Harness) invoke(step Step) (outcome, error) {
	op, ok := ops[step.Op]
	if !ok {
		return outcome{}, fmt.Errorf("unknown op %q", step.Op)
	}
	args := step.Args
	if args == nil {
		args = map[string]any{}
	}
	return op(h.session, args)
}

// checkExpect compares a flow step's outcome with its expect clause. A step
// without one must succeed.
func checkExpect(expect *ExpectClause, out outcome, err error) []string {
	if expect == nil {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return nil
	}

	if expect.Error != "" {
		switch {
		case err == nil:
			return []string{fmt.Sprintf("expected error containing %q, got success", expect.Error)}
		case !strings.Contains(err.Error(), expect.Error):
			return []string{fmt.Sprintf("expected error containing %q, got %q", expect.Error, err.Error())}
		}
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	}

	var errs []string
	if expect.OK != nil {
		switch {
		case out.OK == nil:
			errs = append(errs, "expected an ok outcome, operation reports none")
		case *out.OK != *expect.OK:
			errs = append(errs, fmt.Sprintf("expected ok=%t, got ok=%t", *expect.OK, *out.OK))
		}
	}
	if expect.Result != nil {
		if mismatch := subsetMismatch(normalize(expect.Result), out.Result); mismatch != "" {
			errs = append(errs, "result: "+mismatch)
		}
	}
	return errs
}

func traceFromHistory(st *state.Store) []TraceEvent {
	history := st.History()
	trace := make([]TraceEvent, 0, len(history))
	for _, ev := range history {
		data, _ := normalize(ev.Data).(map[string]any)
		trace = append(trace, TraceEvent{
			Seq:   ev.Seq,
			Event: ev.Name,
			Flow:  ev.Flow,
			Depth: ev.Depth,
			Data:  data,
		})
	}
	return trace
}
