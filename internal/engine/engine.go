package engine

import (
	"context"
	"log/slog"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
)

const tracerName = "github.com/roach88/gamify/internal/engine"

// DefaultMaxSteps is the default number of script dispatches per flow.
const DefaultMaxSteps = 1000

// DefaultMaxDepth is the default nesting limit for cascading events.
const DefaultMaxDepth = 16

// Engine is the event bus. Each Emit records the event, selects scripts and
// runs them one after another before returning. A script that emits another
// event causes that event's whole dispatch to finish before the outer loop
// moves on.
//
// INVARIANTS:
//   - Scripts are matched against a snapshot taken after the event is
//     recorded, so scripts added or removed by a cascade do not disturb
//     the loop in progress.
//   - A failing script never stops its siblings and never fails the caller.
//   - Every flow terminates: total dispatches are capped per flow and
//     nesting depth is bounded. Re-entrant dispatches are also skipped
//     unless the guard is turned off with WithReentrancyGuard(false).
type Engine struct {
	store   *state.Store
	runtime *script.Runtime
	matcher Matcher
	ids     model.IDGenerator
	now     model.Clock
	seq     *Clock
	flowGen FlowTokenGenerator
	cycles  *CycleDetector
	logger  *slog.Logger
	tracer  trace.Tracer

	maxSteps   int
	maxDepth   int
	guardCycle bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatcher replaces the default subscription matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithMaxSteps sets the per-flow dispatch quota.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithReentrancyGuard turns the re-entrancy guard on or off. With it off, a
// script may handle its own event recursively and only the depth limit and
// step quota stop runaway cascades. On by default.
func WithReentrancyGuard(enabled bool) Option {
	return func(e *Engine) {
		e.guardCycle = enabled
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithIDs sets the event ID generator.
func WithIDs(g model.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the wall clock used for event timestamps.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		e.now = c
	}
}

// WithFlowGenerator sets the flow token generator.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(e *Engine) {
		e.flowGen = g
	}
}

// WithTracerProvider sets the provider for dispatch spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// New creates an Engine over st that runs scripts with rt. The logical clock
// resumes after the highest Seq already in st's history.
func New(st *state.Store, rt *script.Runtime, opts ...Option) *Engine {
	var last int64
	for _, ev := range st.History() {
		last = max(last, ev.Seq)
	}

	e := &Engine{
		store:    st,
		runtime:  rt,
		matcher:  DefaultMatcher(),
		ids:      model.UUIDv7IDs{},
		now:      model.SystemClock{},
		seq:      NewClockAt(last),
		flowGen:  UUIDv7Generator{},
		cycles:   NewCycleDetector(),
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		maxSteps: DefaultMaxSteps,
		maxDepth: DefaultMaxDepth,

		guardCycle: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Failure describes one script that did not run to completion.
type Failure struct {
	ScriptID   string
	ScriptName string
	Err        error
}

// Report summarizes one dispatch.
type Report struct {
	// Event is the recorded event. Zero when the dispatch was refused.
	Event model.Event

	// Ran lists the IDs of scripts that were executed, in order.
	Ran []string

	// Failed holds scripts that returned an error.
	Failed []Failure

	// Skipped holds scripts refused by the cycle detector or the quota.
	Skipped []Failure

	// Refused is set when the whole dispatch was refused by the depth guard.
	Refused error
}

// Match reports whether s would be selected for event.
func (e *Engine) Match(s model.Script, event string) bool {
	return e.matcher.Match(s, event)
}

// Emit records the event and runs every matching script with caps.
// The returned error is non-nil only when the event could not be recorded.
func (e *Engine) Emit(ctx context.Context, caps script.Capabilities, name string, data map[string]any) (Report, error) {
	return e.dispatch(ctx, caps, name, data, func(scripts []model.Script) []model.Script {
		matched := make([]model.Script, 0, len(scripts))
		for _, s := range scripts {
			if e.matcher.Match(s, name) {
				matched = append(matched, s)
			}
		}
		return matched
	})
}

// EmitTo records the event and runs only target, bypassing the matcher.
func (e *Engine) EmitTo(ctx context.Context, caps script.Capabilities, target model.Script, name string, data map[string]any) (Report, error) {
	return e.dispatch(ctx, caps, name, data, func([]model.Script) []model.Script {
		return []model.Script{target}
	})
}

func (e *Engine) dispatch(
	ctx context.Context,
	caps script.Capabilities,
	name string,
	data map[string]any,
	selectScripts func([]model.Script) []model.Script,
) (Report, error) {
	fs, nested := flowFrom(ctx)
	if !nested {
		fs = flowState{token: e.flowGen.Generate(), quota: NewQuotaEnforcer(e.maxSteps)}
		defer e.cycles.Clear(fs.token)
	}

	if fs.depth > e.maxDepth {
		err := NewDepthError(fs.token, name, fs.depth, e.maxDepth)
		e.logger.Error("event dropped", "event", name, "flow", fs.token, "error", err)
		return Report{Refused: err}, nil
	}

	ctx, span := e.tracer.Start(ctx, "engine.dispatch", trace.WithAttributes(
		attribute.String("event.name", name),
		attribute.String("flow", fs.token),
		attribute.Int("depth", fs.depth),
	))
	defer span.End()

	if data == nil {
		data = map[string]any{}
	}
	ev := model.Event{
		ID:        e.ids.NewID(),
		Seq:       e.seq.Next(),
		Name:      name,
		Data:      maps.Clone(data),
		Timestamp: e.now.Now(),
		Flow:      fs.token,
		Depth:     fs.depth,
	}
	if err := e.store.AppendEvent(ctx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record event")
		return Report{}, err
	}

	report := Report{Event: ev}
	targets := selectScripts(e.store.Scripts())
	span.SetAttributes(attribute.Int("scripts.matched", len(targets)))
	e.logger.Debug("dispatching event", "event", name, "flow", fs.token, "depth", fs.depth, "scripts", len(targets))

	sc := script.NewEventContext(name, data)
	child := withFlow(ctx, flowState{token: fs.token, depth: fs.depth + 1, quota: fs.quota})

	for _, s := range targets {
		if err := fs.quota.Check(fs.token); err != nil {
			e.logger.Error("script skipped", "script", s.Name, "event", name, "error", err)
			report.Skipped = append(report.Skipped, Failure{ScriptID: s.ID, ScriptName: s.Name, Err: err})
			continue
		}
		if e.guardCycle && e.cycles.WouldCycle(fs.token, s.ID, name) {
			err := NewCycleError(fs.token, s.ID, name)
			e.logger.Info("script skipped", "script", s.Name, "event", name, "error", err)
			report.Skipped = append(report.Skipped, Failure{ScriptID: s.ID, ScriptName: s.Name, Err: err})
			continue
		}

		report.Ran = append(report.Ran, s.ID)
		if err := e.run(child, caps, s, name, sc); err != nil {
			e.logger.Error("script failed", "script", s.Name, "event", name, "error", err)
			report.Failed = append(report.Failed, Failure{ScriptID: s.ID, ScriptName: s.Name, Err: err})
		}
	}
	return report, nil
}

func (e *Engine) run(ctx context.Context, caps script.Capabilities, s model.Script, event string, sc script.Context) error {
	fs, _ := flowFrom(ctx)
	e.cycles.Record(fs.token, s.ID, event)
	defer e.cycles.Release(fs.token, s.ID, event)

	ctx, span := e.tracer.Start(ctx, "script.execute", trace.WithAttributes(
		attribute.String("script.id", s.ID),
		attribute.String("script.name", s.Name),
		attribute.String("event.name", event),
	))
	defer span.End()

	if _, err := e.runtime.Execute(ctx, s, caps, sc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "script failed")
		return err
	}
	return nil
}
