// Package gameapi is the capability surface exposed to scripts and the
// user-level game flows built on it.
//
// API implements script.Capabilities. Every mutating operation writes
// through the state store first and then emits its event through the
// engine, so event payloads describe post-mutation state. Operations that
// can change point totals finish by re-running the achievement evaluator.
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/gamify/internal/achievement"
	"github.com/roach88/gamify/internal/engine"
	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
)

// ErrNotFound is wrapped by user-level operations whose target does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPoints is returned when a reward's criteria are not met.
var ErrInsufficientPoints = errors.New("insufficient points")

// ValidationError reports rejected user input. Nothing is written when it
// is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// API is the game façade.
type API struct {
	store     *state.Store
	engine    *engine.Engine
	runtime   *script.Runtime
	evaluator *achievement.Evaluator
	notifier  Notifier
	ids       model.IDGenerator
	clock     model.Clock
	rand      *rand.Rand
	logger    *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		a.logger = l
	}
}

// WithIDs sets the record ID generator.
func WithIDs(g model.IDGenerator) Option {
	return func(a *API) {
		a.ids = g
	}
}

// WithClock sets the wall clock used for record stamps.
func WithClock(c model.Clock) Option {
	return func(a *API) {
		a.clock = c
	}
}

// WithRand sets the random source behind the random utilities.
func WithRand(r *rand.Rand) Option {
	return func(a *API) {
		a.rand = r
	}
}

// WithNotifier sets where user-facing notifications go.
func WithNotifier(n Notifier) Option {
	return func(a *API) {
		a.notifier = n
	}
}

// New creates an API over st. Events go through eng and stored scripts run
// on rt.
func New(st *state.Store, eng *engine.Engine, rt *script.Runtime, opts ...Option) *API {
	a := &API{
		store:   st,
		engine:  eng,
		runtime: rt,
		ids:     model.UUIDv7IDs{},
		clock:   model.SystemClock{},
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = NewLogNotifier(a.logger)
	}
	a.evaluator = achievement.NewEvaluator(a.clock, a.notifier)
	return a
}

// Store returns the underlying state store.
func (a *API) Store() *state.Store {
	return a.store
}

var _ script.Capabilities = (*API)(nil)

// emit dispatches an event with a as the capability surface. Script
// failures stay inside the engine; only a failure to record the event is
// returned.
func (a *API) emit(ctx context.Context, name string, data map[string]any) error {
	if _, err := a.engine.Emit(ctx, a, name, data); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return nil
}

// CheckAchievements runs the evaluator now. Awarded prestige is announced
// with onPrestigeChange.
func (a *API) CheckAchievements(ctx context.Context) (achievement.Result, error) {
	res, err := a.evaluator.Check(ctx, a.store)
	if err != nil {
		return res, err
	}
	for _, u := range res.Unlocked {
		a.logger.Info("achievement unlocked", "achievement", u.Name)
	}
	if res.PrestigeDelta != 0 {
		after := a.store.Prestige()
		if err := a.emitPrestigeChange(ctx, after-res.PrestigeDelta, after, res.PrestigeDelta); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (a *API) emitPrestigeChange(ctx context.Context, before, after, added int) error {
	return a.emit(ctx, model.EventPrestigeChange, map[string]any{
		"oldPoints": before,
		"newPoints": after,
		"added":     added,
	})
}
