package gameapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// MaxAchievementPrestige bounds the prestige a single achievement can award.
const MaxAchievementPrestige = 1000

// Unlock creates an already-earned achievement named name. It reports
// false when any achievement with that name exists, earned or not. Criteria
// based achievements are not consulted beyond that name check. Prestige is
// granted at once when enabled. Emits onAchievementUnlock, then
// onPrestigeChange if prestige moved.
func (a *API) Unlock(ctx context.Context, name, description string) (bool, error) {
	if _, exists := a.store.AchievementByName(name); exists {
		return false, nil
	}
	if description == "" {
		description = "unlocked by script"
	}
	settings := a.store.PrestigeSettings()
	now := a.clock.Now()
	ach := model.Achievement{
		ID:             a.ids.NewID(),
		Name:           name,
		Description:    description,
		PrestigePoints: settings.PointsPerAchievement,
		Earned:         true,
		EarnedDate:     &now,
	}
	if err := a.store.AddAchievement(ctx, ach); err != nil {
		return false, err
	}

	before, after := a.store.Prestige(), a.store.Prestige()
	if settings.Enabled && ach.PrestigePoints != 0 {
		var err error
		if before, after, err = a.store.AddPrestige(ctx, ach.PrestigePoints); err != nil {
			return false, err
		}
	}
	a.logger.Info("achievement unlocked", "achievement", name, "source", "script")

	if err := a.emit(ctx, model.EventAchievementUnlock, map[string]any{"achievement": ach}); err != nil {
		return true, err
	}
	if after != before {
		return true, a.emitPrestigeChange(ctx, before, after, after-before)
	}
	return true, nil
}

// Achievement looks up an achievement by name.
func (a *API) Achievement(name string) (model.Achievement, bool) {
	return a.store.AchievementByName(name)
}

// Achievements returns every achievement.
func (a *API) Achievements() []model.Achievement {
	return a.store.Achievements()
}

// IsUnlocked reports whether an earned achievement named name exists.
func (a *API) IsUnlocked(name string) bool {
	ach, ok := a.store.AchievementByName(name)
	return ok && ach.Earned
}

// AchievementInput is a user-defined achievement. A nil Prestige takes the
// settings default.
type AchievementInput struct {
	Name        string
	Description string
	Criteria    string
	Prestige    *int
}

func (a *API) validateAchievement(in AchievementInput) (int, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, &ValidationError{Field: "name", Message: "achievement name cannot be empty"}
	}
	if strings.TrimSpace(in.Criteria) != "" {
		if _, err := points.Parse(in.Criteria); err != nil {
			return 0, err
		}
	}
	prestige := a.store.PrestigeSettings().PointsPerAchievement
	if in.Prestige != nil && *in.Prestige != 0 {
		prestige = *in.Prestige
	}
	if prestige < 0 || prestige > MaxAchievementPrestige {
		return 0, &ValidationError{
			Field:   "prestigePoints",
			Message: fmt.Sprintf("must be between 0 and %d", MaxAchievementPrestige),
		}
	}
	return prestige, nil
}

// AddAchievement validates in and stores an unearned achievement.
func (a *API) AddAchievement(ctx context.Context, in AchievementInput) (model.Achievement, error) {
	prestige, err := a.validateAchievement(in)
	if err != nil {
		return model.Achievement{}, err
	}
	ach := model.Achievement{
		ID:             a.ids.NewID(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Criteria:       in.Criteria,
		PrestigePoints: prestige,
	}
	if err := a.store.AddAchievement(ctx, ach); err != nil {
		return model.Achievement{}, err
	}
	return ach, nil
}

// EditAchievement replaces the definition of achievement id. Its earned
// state is kept.
func (a *API) EditAchievement(ctx context.Context, id string, in AchievementInput) (model.Achievement, error) {
	ach, ok := a.store.Achievement(id)
	if !ok {
		return model.Achievement{}, fmt.Errorf("achievement %s: %w", id, ErrNotFound)
	}
	prestige, err := a.validateAchievement(in)
	if err != nil {
		return model.Achievement{}, err
	}
	ach.Name = strings.TrimSpace(in.Name)
	ach.Description = in.Description
	ach.Criteria = in.Criteria
	ach.PrestigePoints = prestige
	if _, err := a.store.ReplaceAchievement(ctx, ach); err != nil {
		return model.Achievement{}, err
	}
	return ach, nil
}

// DeleteAchievement removes achievement id. Prestige already awarded stays.
func (a *API) DeleteAchievement(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveAchievement(ctx, id)
}
