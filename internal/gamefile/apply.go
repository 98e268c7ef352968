package gamefile

import (
	"context"
	"fmt"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/model"
)

// Action is what Apply did with one declaration.
type Action string

const (
	Created   Action = "created"
	Updated   Action = "updated"
	Unchanged Action = "unchanged"
)

// Change records the outcome for one declared record.
type Change struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Action Action `json:"action"`
}

// Apply merges def into the game by name. Achievements are edited in place
// and keep their earned state; scripts are upserted. Rewards and recurring
// templates that already exist are left alone, since purchases and
// application counts refer to them. Apply stops at the first error and
// returns the changes made so far.
func Apply(ctx context.Context, api *gameapi.API, def *Definition) ([]Change, error) {
	var changes []Change
	record := func(kind, name string, action Action) {
		changes = append(changes, Change{Kind: kind, Name: name, Action: action})
	}

	for _, r := range def.Rewards {
		if rewardNamed(api.Rewards(), r.Name) {
			record("reward", r.Name, Unchanged)
			continue
		}
		if _, err := api.CreateReward(ctx, r.Name, r.Description, r.Criteria); err != nil {
			return changes, fmt.Errorf("reward %s: %w", r.Name, err)
		}
		record("reward", r.Name, Created)
	}

	for _, a := range def.Achievements {
		in := gameapi.AchievementInput{
			Name:        a.Name,
			Description: a.Description,
			Criteria:    a.Criteria,
			Prestige:    a.Prestige,
		}
		if existing, ok := api.Achievement(a.Name); ok {
			if _, err := api.EditAchievement(ctx, existing.ID, in); err != nil {
				return changes, fmt.Errorf("achievement %s: %w", a.Name, err)
			}
			record("achievement", a.Name, Updated)
			continue
		}
		if _, err := api.AddAchievement(ctx, in); err != nil {
			return changes, fmt.Errorf("achievement %s: %w", a.Name, err)
		}
		record("achievement", a.Name, Created)
	}

	for _, r := range def.Recurring {
		if recurringNamed(api.Recurrings(), r.Name) {
			record("recurring", r.Name, Unchanged)
			continue
		}
		if _, err := api.AddRecurring(ctx, r.Name, r.Description, r.Points); err != nil {
			return changes, fmt.Errorf("recurring %s: %w", r.Name, err)
		}
		record("recurring", r.Name, Created)
	}

	for _, s := range def.Scripts {
		_, created, err := api.SaveScript(ctx, gameapi.ScriptInput{
			Name:        s.Name,
			Description: s.Description,
			Code:        s.Code,
			Events:      s.Events,
		})
		if err != nil {
			return changes, fmt.Errorf("script %s: %w", s.Name, err)
		}
		if created {
			record("script", s.Name, Created)
		} else {
			record("script", s.Name, Updated)
		}
	}

	// Declared achievements may already be satisfied by existing logs.
	if len(def.Achievements) > 0 {
		if _, err := api.CheckAchievements(ctx); err != nil {
			return changes, err
		}
	}
	return changes, nil
}

func rewardNamed(list []model.Reward, name string) bool {
	for _, r := range list {
		if r.Name == name {
			return true
		}
	}
	return false
}

func recurringNamed(list []model.Recurring, name string) bool {
	for _, r := range list {
		if r.Name == name {
			return true
		}
	}
	return false
}
