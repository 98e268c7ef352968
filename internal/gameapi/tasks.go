package gameapi

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

const defaultPriority = "normal"

// AddTask creates a pending task from script data. Missing optional fields
// take their defaults. Emits onTaskAdd.
func (a *API) AddTask(ctx context.Context, data map[string]any) (model.Task, error) {
	pts, err := pointsField(data, "points")
	if err != nil {
		return model.Task{}, err
	}
	priority := stringField(data, "priority")
	if priority == "" {
		priority = defaultPriority
	}
	return a.insertTask(ctx, model.Task{
		Name:            stringField(data, "name"),
		Description:     stringField(data, "description"),
		Points:          pts,
		Priority:        priority,
		Category:        stringField(data, "category"),
		DueDate:         stringField(data, "dueDate"),
		ItemRewards:     countsField(data, "itemRewards"),
		ExpReward:       intField(data, "expReward"),
		SelectedScripts: stringsField(data, "selectedScripts"),
	})
}

// TaskInput is a user-entered task. Points is a "skill:value" list.
type TaskInput struct {
	Name            string
	Description     string
	Points          string
	Priority        string
	Category        string
	DueDate         string
	ItemRewards     map[string]int
	ExpReward       int
	SelectedScripts []string
}

// CreateTask validates in and creates a pending task. Emits onTaskAdd.
func (a *API) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Task{}, &ValidationError{Field: "name", Message: "task name cannot be empty"}
	}
	pts := model.Points{}
	if strings.TrimSpace(in.Points) != "" {
		var err error
		if pts, err = points.Parse(in.Points); err != nil {
			return model.Task{}, err
		}
	}
	for name, amount := range in.ItemRewards {
		if amount <= 0 {
			return model.Task{}, &ValidationError{Field: "itemRewards", Message: fmt.Sprintf("%s must be positive", name)}
		}
	}
	for _, id := range in.SelectedScripts {
		if _, ok := a.store.Script(id); !ok {
			return model.Task{}, &ValidationError{Field: "selectedScripts", Message: fmt.Sprintf("unknown script %s", id)}
		}
	}
	priority := in.Priority
	if priority == "" {
		priority = defaultPriority
	}
	items := map[string]int{}
	maps.Copy(items, in.ItemRewards)
	return a.insertTask(ctx, model.Task{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Points:          pts,
		Priority:        priority,
		Category:        in.Category,
		DueDate:         in.DueDate,
		ItemRewards:     items,
		ExpReward:       in.ExpReward,
		SelectedScripts: append([]string{}, in.SelectedScripts...),
	})
}

func (a *API) insertTask(ctx context.Context, t model.Task) (model.Task, error) {
	now := a.clock.Now()
	t.ID = a.ids.NewID()
	t.Date = now
	t.CreatedAt = now
	t.Status = model.TaskPending
	if err := a.store.AddTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	a.logger.Debug("task added", "task", t.Name, "id", t.ID)
	return t, a.emit(ctx, model.EventTaskAdd, map[string]any{"task": t})
}

// RemoveTask deletes a task, pending or completed. It reports false when no
// task has id. Emits onTaskRemove.
func (a *API) RemoveTask(ctx context.Context, id string) (bool, error) {
	removed, ok, err := a.store.RemoveTask(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return true, a.emit(ctx, model.EventTaskRemove, map[string]any{"task": removed})
}

// DeleteTask removes a task whatever its status. No event is emitted.
func (a *API) DeleteTask(ctx context.Context, id string) (bool, error) {
	_, ok, err := a.store.RemoveTask(ctx, id)
	return ok, err
}

// CompleteTask completes a pending task:
//
//  1. item rewards are granted,
//  2. a log entry carrying the task's points is appended,
//  3. the task is marked completed,
//  4. onTaskComplete is dispatched separately to each selected script,
//  5. achievements are re-evaluated.
//
// It reports false when the task is missing or already completed.
func (a *API) CompleteTask(ctx context.Context, id string) (bool, error) {
	task, ok := a.store.Task(id)
	if !ok || task.Completed {
		return false, nil
	}
	now := a.clock.Now()

	for _, name := range sortedKeys(task.ItemRewards) {
		fresh := model.Item{
			ID:          a.ids.NewID(),
			Description: "earned from task " + task.Name,
			EarnedAt:    now,
		}
		if _, _, err := a.store.GrantItem(ctx, name, task.ItemRewards[name], fresh); err != nil {
			return false, err
		}
	}

	entry := model.LogEntry{
		ID:          a.ids.NewID(),
		Name:        task.Name,
		Description: strings.TrimSpace(task.Description + " (task completed)"),
		Points:      task.Points.Clone(),
		Date:        now,
	}
	if err := a.store.AppendLog(ctx, entry); err != nil {
		return false, err
	}

	completedAt := now
	task.Completed = true
	task.CompletedAt = &completedAt
	task.Status = model.TaskCompleted
	if _, err := a.store.ReplaceTask(ctx, task); err != nil {
		return false, err
	}
	a.logger.Info("task completed", "task", task.Name, "id", task.ID)

	data := map[string]any{"task": task}
	for _, scriptID := range task.SelectedScripts {
		s, ok := a.store.Script(scriptID)
		if !ok {
			a.logger.Warn("selected script not found", "task", task.Name, "script", scriptID)
			continue
		}
		if _, err := a.engine.EmitTo(ctx, a, s, model.EventTaskComplete, data); err != nil {
			return true, fmt.Errorf("emit %s: %w", model.EventTaskComplete, err)
		}
	}

	if _, err := a.CheckAchievements(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// UndoTask reverts a completed task to pending and takes back its item
// rewards, never below zero. The completion log and anything scripts did
// stay in place. It reports false unless the task is completed.
func (a *API) UndoTask(ctx context.Context, id string) (bool, error) {
	task, ok := a.store.Task(id)
	if !ok || !task.Completed {
		return false, nil
	}
	for _, name := range sortedKeys(task.ItemRewards) {
		if _, _, err := a.store.DrainItem(ctx, name, task.ItemRewards[name]); err != nil {
			return false, err
		}
	}
	task.Completed = false
	task.CompletedAt = nil
	task.Status = model.TaskPending
	if _, err := a.store.ReplaceTask(ctx, task); err != nil {
		return false, err
	}
	a.logger.Info("task reverted", "task", task.Name, "id", task.ID)
	return true, nil
}

// TaskByID looks up a task of any status.
func (a *API) TaskByID(id string) (model.Task, bool) {
	return a.store.Task(id)
}

// AllTasks returns every task.
func (a *API) AllTasks() []model.Task {
	return a.store.Tasks()
}

// Todos returns pending tasks.
func (a *API) Todos() []model.Task {
	var out []model.Task
	for _, t := range a.store.Tasks() {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Logs returns every log entry.
func (a *API) Logs() []model.LogEntry {
	return a.store.Logs()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
