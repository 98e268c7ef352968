package gameapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// AddRecurring stores a reusable action template.
func (a *API) AddRecurring(ctx context.Context, name, description, pointsInput string) (model.Recurring, error) {
	if strings.TrimSpace(name) == "" {
		return model.Recurring{}, &ValidationError{Field: "name", Message: "template name cannot be empty"}
	}
	pts, err := points.Parse(pointsInput)
	if err != nil {
		return model.Recurring{}, err
	}
	r := model.Recurring{
		ID:          a.ids.NewID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Points:      pts,
	}
	if err := a.store.AddRecurring(ctx, r); err != nil {
		return model.Recurring{}, err
	}
	return r, nil
}

// ApplyRecurring logs template id once, counts the application and
// re-evaluates achievements.
func (a *API) ApplyRecurring(ctx context.Context, id string) (model.LogEntry, error) {
	r, ok := a.store.Recurring(id)
	if !ok {
		return model.LogEntry{}, fmt.Errorf("recurring %s: %w", id, ErrNotFound)
	}
	entry := model.LogEntry{
		ID:          a.ids.NewID(),
		Name:        r.Name,
		Description: r.Description,
		Points:      r.Points.Clone(),
		Date:        a.clock.Now(),
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		return model.LogEntry{}, err
	}
	r.Applied++
	if _, err := a.store.ReplaceRecurring(ctx, r); err != nil {
		return entry, err
	}
	a.logger.Info("recurring applied", "template", r.Name, "applied", r.Applied)

	if _, err := a.CheckAchievements(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// Recurrings returns every template.
func (a *API) Recurrings() []model.Recurring {
	return a.store.Recurrings()
}

// DeleteRecurring removes template id.
func (a *API) DeleteRecurring(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveRecurring(ctx, id)
}
