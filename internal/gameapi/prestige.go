package gameapi

import (
	"context"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/progression"
)

// AddPrestige adds n prestige points, which may be negative, and returns
// the new total. Emits onPrestigeChange.
func (a *API) AddPrestige(ctx context.Context, n int) (int, error) {
	before, after, err := a.store.AddPrestige(ctx, n)
	if err != nil {
		return 0, err
	}
	return after, a.emitPrestigeChange(ctx, before, after, n)
}

// PrestigePoints returns the prestige total.
func (a *API) PrestigePoints() int {
	return a.store.Prestige()
}

// PrestigeSettings returns the current settings.
func (a *API) PrestigeSettings() model.PrestigeSettings {
	return a.store.PrestigeSettings()
}

// PrestigeLevel returns the tier of the current total.
func (a *API) PrestigeLevel() progression.Tier {
	return progression.PrestigeTier(a.store.Prestige())
}

// SettingsUpdate changes the fields that are non-nil.
type SettingsUpdate struct {
	Enabled              *bool
	PointsPerAchievement *int
}

// UpdatePrestigeSettings merges u into the stored settings.
func (a *API) UpdatePrestigeSettings(ctx context.Context, u SettingsUpdate) (model.PrestigeSettings, error) {
	settings := a.store.PrestigeSettings()
	if u.Enabled != nil {
		settings.Enabled = *u.Enabled
	}
	if u.PointsPerAchievement != nil {
		n := *u.PointsPerAchievement
		if n < 0 || n > MaxAchievementPrestige {
			return settings, &ValidationError{Field: "pointsPerAchievement", Message: "must be between 0 and 1000"}
		}
		settings.PointsPerAchievement = n
	}
	if err := a.store.SetPrestigeSettings(ctx, settings); err != nil {
		return model.PrestigeSettings{}, err
	}
	return settings, nil
}
