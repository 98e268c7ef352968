package gameapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// UseReward announces that reward id was used. Nothing is deducted. It
// reports false when the reward does not exist. Emits onRewardUse.
func (a *API) UseReward(ctx context.Context, id string, useCtx map[string]any) (bool, error) {
	r, ok := a.store.Reward(id)
	if !ok {
		return false, nil
	}
	if useCtx == nil {
		useCtx = map[string]any{}
	}
	return true, a.emit(ctx, model.EventRewardUse, map[string]any{"reward": r, "context": useCtx})
}

// AddReward stores a reward from script data. Unknown fields are kept.
// Emits onRewardAdd.
func (a *API) AddReward(ctx context.Context, data map[string]any) (model.Reward, error) {
	r := model.Reward{
		Name:        stringField(data, "name"),
		Description: stringField(data, "description"),
		Criteria:    stringField(data, "criteria"),
		Extra:       extras(data, "id", "name", "description", "criteria", "createdAt"),
	}
	return a.insertReward(ctx, r)
}

// CreateReward validates and stores a user-defined reward. Non-blank
// criteria must be a valid "skill:value" list. Emits onRewardAdd.
func (a *API) CreateReward(ctx context.Context, name, description, criteria string) (model.Reward, error) {
	if strings.TrimSpace(name) == "" {
		return model.Reward{}, &ValidationError{Field: "name", Message: "reward name cannot be empty"}
	}
	if strings.TrimSpace(criteria) != "" {
		if _, err := points.Parse(criteria); err != nil {
			return model.Reward{}, err
		}
	}
	return a.insertReward(ctx, model.Reward{
		Name:        strings.TrimSpace(name),
		Description: description,
		Criteria:    criteria,
	})
}

func (a *API) insertReward(ctx context.Context, r model.Reward) (model.Reward, error) {
	r.ID = a.ids.NewID()
	r.CreatedAt = a.clock.Now()
	if err := a.store.AddReward(ctx, r); err != nil {
		return model.Reward{}, err
	}
	return r, a.emit(ctx, model.EventRewardAdd, map[string]any{"reward": r})
}

// Rewards returns every reward.
func (a *API) Rewards() []model.Reward {
	return a.store.Rewards()
}

// Reward looks up a reward by id.
func (a *API) Reward(id string) (model.Reward, bool) {
	return a.store.Reward(id)
}

// DeleteReward removes reward id.
func (a *API) DeleteReward(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveReward(ctx, id)
}

// RewardEligible reports whether criteria are non-empty and fully met by
// current totals.
func (a *API) RewardEligible(criteria string) bool {
	reqs, ok := points.ParseCriteria(criteria)
	if !ok {
		return false
	}
	return points.Satisfied(reqs, a.store.Cumulative)
}

// affordable reports whether every pair with a positive requirement is met.
// Malformed criteria are never affordable; empty criteria always are.
func (a *API) affordable(criteria string) ([]points.Requirement, bool) {
	if strings.TrimSpace(criteria) == "" {
		return nil, true
	}
	reqs, ok := points.ParseCriteria(criteria)
	if !ok {
		return nil, false
	}
	for _, req := range reqs {
		if req.Value > 0 && float64(a.store.Cumulative(req.Skill)) < req.Value {
			return nil, false
		}
	}
	return reqs, true
}

// BuyReward spends the reward's criteria points. A log entry with the
// negated values is appended and one unit of an item named after the reward
// is granted. Returns ErrInsufficientPoints, changing nothing, when any
// positive requirement is unmet.
func (a *API) BuyReward(ctx context.Context, id string) (model.LogEntry, error) {
	r, ok := a.store.Reward(id)
	if !ok {
		return model.LogEntry{}, fmt.Errorf("reward %s: %w", id, ErrNotFound)
	}
	reqs, ok := a.affordable(r.Criteria)
	if !ok {
		return model.LogEntry{}, fmt.Errorf("reward %q: %w", r.Name, ErrInsufficientPoints)
	}

	cost := model.Points{}
	for _, req := range reqs {
		cost[req.Skill] = -req.Cost()
	}
	now := a.clock.Now()
	entry := model.LogEntry{
		ID:          a.ids.NewID(),
		Name:        "Reward purchased: " + r.Name,
		Description: r.Description,
		Points:      cost,
		Date:        now,
		RewardID:    r.ID,
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		return model.LogEntry{}, err
	}

	fresh := model.Item{
		ID:          a.ids.NewID(),
		Description: r.Description,
		EarnedAt:    now,
		RewardID:    r.ID,
	}
	if _, _, err := a.store.GrantItem(ctx, r.Name, 1, fresh); err != nil {
		return entry, err
	}
	a.logger.Info("reward purchased", "reward", r.Name, "cost", points.Format(cost))

	if _, err := a.CheckAchievements(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}
