package gameapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// AddLog appends a log entry from script data. Unknown fields are kept.
// Emits onLogAdd. Achievements are not re-evaluated.
func (a *API) AddLog(ctx context.Context, data map[string]any) (model.LogEntry, error) {
	pts, err := pointsField(data, "points")
	if err != nil {
		return model.LogEntry{}, err
	}
	entry := model.LogEntry{
		ID:          a.ids.NewID(),
		Name:        stringField(data, "name"),
		Description: stringField(data, "description"),
		Points:      pts,
		Date:        a.clock.Now(),
		RewardID:    stringField(data, "rewardId"),
		Extra:       extras(data, "id", "name", "description", "points", "date", "rewardId"),
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		return model.LogEntry{}, err
	}
	return entry, a.emit(ctx, model.EventLogAdd, map[string]any{"log": entry})
}

// LogByID looks up a log entry.
func (a *API) LogByID(id string) (model.LogEntry, bool) {
	return a.store.Log(id)
}

// AddAction records a manually performed action. pointsInput must be a
// valid non-empty "skill:value" list. Emits onLogAdd and re-evaluates
// achievements.
func (a *API) AddAction(ctx context.Context, name, description, pointsInput string) (model.LogEntry, error) {
	if strings.TrimSpace(name) == "" {
		return model.LogEntry{}, &ValidationError{Field: "name", Message: "action name cannot be empty"}
	}
	pts, err := points.Parse(pointsInput)
	if err != nil {
		return model.LogEntry{}, err
	}
	entry := model.LogEntry{
		ID:          a.ids.NewID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Points:      pts,
		Date:        a.clock.Now(),
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		return model.LogEntry{}, err
	}
	a.logger.Info("action logged", "action", entry.Name, "points", points.Format(pts))

	if err := a.emit(ctx, model.EventLogAdd, map[string]any{"log": entry}); err != nil {
		return entry, err
	}
	if _, err := a.CheckAchievements(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// EditLog replaces the name, description and points of log id.
func (a *API) EditLog(ctx context.Context, id, name, description, pointsInput string) (model.LogEntry, error) {
	entry, ok := a.store.Log(id)
	if !ok {
		return model.LogEntry{}, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	pts, err := points.Parse(pointsInput)
	if err != nil {
		return model.LogEntry{}, err
	}
	entry.Name = name
	entry.Description = description
	entry.Points = pts
	if _, err := a.store.ReplaceLog(ctx, entry); err != nil {
		return model.LogEntry{}, err
	}
	return entry, nil
}

// DeleteLog removes log id. Achievements already earned stay earned.
func (a *API) DeleteLog(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveLog(ctx, id)
}
