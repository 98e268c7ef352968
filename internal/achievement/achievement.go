// Package achievement unlocks achievements whose criteria are met.
//
// Evaluate is pure: it returns a new collection with newly qualifying
// achievements marked earned, plus the prestige they award. Evaluator applies
// that result to a state.Store in one collection save and one prestige
// mutation.
package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
	"github.com/roach88/gamify/internal/state"
)

// Lookup returns the cumulative points of a skill.
type Lookup func(skill string) int

// Result is the outcome of one evaluation pass.
type Result struct {
	Achievements  []model.Achievement
	Unlocked      []model.Achievement
	PrestigeDelta int
}

// Qualifies reports whether every criteria pair is met. Empty or malformed
// criteria never qualify.
func Qualifies(criteria string, lookup Lookup) bool {
	reqs, ok := points.ParseCriteria(criteria)
	if !ok {
		return false
	}
	return points.Satisfied(reqs, lookup)
}

// PrestigeFor returns the prestige an achievement awards under settings.
func PrestigeFor(a model.Achievement, settings model.PrestigeSettings) int {
	if a.PrestigePoints != 0 {
		return a.PrestigePoints
	}
	return settings.PointsPerAchievement
}

// Evaluate marks every unearned, qualifying achievement as earned at now.
// Already earned achievements are never re-tested, so a second pass over the
// result is a no-op.
func Evaluate(list []model.Achievement, lookup Lookup, settings model.PrestigeSettings, now time.Time) Result {
	res := Result{Achievements: make([]model.Achievement, len(list))}
	for i, a := range list {
		if !a.Earned && Qualifies(a.Criteria, lookup) {
			stamp := now
			a.Earned = true
			a.EarnedDate = &stamp
			if settings.Enabled {
				res.PrestigeDelta += PrestigeFor(a, settings)
			}
			res.Unlocked = append(res.Unlocked, a)
		}
		res.Achievements[i] = a
	}
	return res
}

// Notifier delivers a user-visible message.
type Notifier interface {
	Notify(ctx context.Context, message, kind string)
}

// Evaluator runs Evaluate against a store and applies the result.
type Evaluator struct {
	clock    model.Clock
	notifier Notifier
}

// NewEvaluator creates an Evaluator. notifier may be nil.
func NewEvaluator(clock model.Clock, notifier Notifier) *Evaluator {
	return &Evaluator{clock: clock, notifier: notifier}
}

// Check evaluates all achievements against st's current totals. Newly
// earned achievements are saved in one write, the prestige delta is added
// once, and when prestige is enabled a summary notification is sent.
func (e *Evaluator) Check(ctx context.Context, st *state.Store) (Result, error) {
	settings := st.PrestigeSettings()
	res := Evaluate(st.Achievements(), st.Cumulative, settings, e.clock.Now())
	if len(res.Unlocked) == 0 {
		return res, nil
	}

	if err := st.SetAchievements(ctx, res.Achievements); err != nil {
		return res, fmt.Errorf("save unlocked achievements: %w", err)
	}
	if res.PrestigeDelta == 0 {
		return res, nil
	}

	_, total, err := st.AddPrestige(ctx, res.PrestigeDelta)
	if err != nil {
		return res, fmt.Errorf("award prestige: %w", err)
	}
	if settings.Enabled && e.notifier != nil {
		msg := fmt.Sprintf("Congratulations! You earned %d prestige points. Total prestige: %d", res.PrestigeDelta, total)
		e.notifier.Notify(ctx, msg, "success")
	}
	return res, nil
}
