package script

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/progression"
)

// fakeCaps records calls made by scripts and serves canned state.
type fakeCaps struct {
	now       time.Time
	tasks     []model.Task
	items     map[string]int
	unlocked  []string
	triggered []string
	notes     []string
	logged    []string
	prestige  int
	added     []map[string]any
	nextRand  int
	failAdd   error
}

func newFakeCaps() *fakeCaps {
	return &fakeCaps{
		now:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		items: map[string]int{},
	}
}

func (f *fakeCaps) AddTask(_ context.Context, data map[string]any) (model.Task, error) {
	if f.failAdd != nil {
		return model.Task{}, f.failAdd
	}
	f.added = append(f.added, data)
	name, _ := data["name"].(string)
	task := model.Task{ID: fmt.Sprintf("t%d", len(f.tasks)+1), Name: name, Status: model.TaskPending}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeCaps) RemoveTask(context.Context, string) (bool, error)   { return false, nil }
func (f *fakeCaps) CompleteTask(context.Context, string) (bool, error) { return true, nil }

func (f *fakeCaps) TaskByID(id string) (model.Task, bool) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (f *fakeCaps) AllTasks() []model.Task { return f.tasks }
func (f *fakeCaps) Todos() []model.Task    { return f.tasks }
func (f *fakeCaps) Logs() []model.LogEntry { return nil }

func (f *fakeCaps) AddItem(_ context.Context, name string, amount int) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	f.items[name] += amount
	return true, nil
}

func (f *fakeCaps) RemoveItem(_ context.Context, name string, amount int) (bool, error) {
	if f.items[name] < amount {
		return false, nil
	}
	f.items[name] -= amount
	return true, nil
}

func (f *fakeCaps) Item(name string) (model.Item, bool) {
	n, ok := f.items[name]
	return model.Item{Name: name, Amount: n}, ok
}

func (f *fakeCaps) Items() []model.Item       { return nil }
func (f *fakeCaps) ItemTotal(name string) int { return f.items[name] }

func (f *fakeCaps) Unlock(_ context.Context, name, _ string) (bool, error) {
	f.unlocked = append(f.unlocked, name)
	return true, nil
}

func (f *fakeCaps) Achievement(string) (model.Achievement, bool) { return model.Achievement{}, false }
func (f *fakeCaps) Achievements() []model.Achievement            { return nil }
func (f *fakeCaps) IsUnlocked(name string) bool {
	for _, n := range f.unlocked {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeCaps) UseReward(context.Context, string, map[string]any) (bool, error) {
	return false, nil
}
func (f *fakeCaps) AddReward(context.Context, map[string]any) (model.Reward, error) {
	return model.Reward{}, nil
}
func (f *fakeCaps) Rewards() []model.Reward            { return nil }
func (f *fakeCaps) Reward(string) (model.Reward, bool) { return model.Reward{}, false }
func (f *fakeCaps) AddLog(context.Context, map[string]any) (model.LogEntry, error) {
	return model.LogEntry{}, nil
}
func (f *fakeCaps) LogByID(string) (model.LogEntry, bool) { return model.LogEntry{}, false }

func (f *fakeCaps) AddPrestige(_ context.Context, n int) (int, error) {
	f.prestige += n
	return f.prestige, nil
}
func (f *fakeCaps) PrestigePoints() int                      { return f.prestige }
func (f *fakeCaps) PrestigeSettings() model.PrestigeSettings { return model.DefaultPrestigeSettings() }
func (f *fakeCaps) PrestigeLevel() progression.Tier          { return progression.PrestigeTier(f.prestige) }

func (f *fakeCaps) Notify(_ context.Context, message, kind string) error {
	f.notes = append(f.notes, kind+":"+message)
	return nil
}
func (f *fakeCaps) LogMessage(message string) { f.logged = append(f.logged, message) }
func (f *fakeCaps) Toast(message, kind string) {
	f.notes = append(f.notes, "toast:"+kind+":"+message)
}

func (f *fakeCaps) Now() time.Time { return f.now }
func (f *fakeCaps) RandomInt(min, _ int) int {
	return min + f.nextRand
}
func (f *fakeCaps) Streak(tasks []model.Task, _ int) int { return len(tasks) }

func (f *fakeCaps) Scripts() []model.Script            { return nil }
func (f *fakeCaps) Script(string) (model.Script, bool) { return model.Script{}, false }
func (f *fakeCaps) ExecuteScript(context.Context, string, Context) (any, bool, error) {
	return nil, false, nil
}

func (f *fakeCaps) Trigger(_ context.Context, name string, _ map[string]any) error {
	f.triggered = append(f.triggered, name)
	return nil
}
func (f *fakeCaps) EventHistory() []model.Event { return nil }

var _ Capabilities = (*fakeCaps)(nil)
