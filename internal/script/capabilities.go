package script

import (
	"context"
	"time"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/progression"
)

// Capabilities is the complete surface a script may call, grouped by domain.
// Mutating calls take ctx so nested event dispatch stays in the same flow.
type Capabilities interface {
	TaskCapabilities
	InventoryCapabilities
	AchievementCapabilities
	RewardCapabilities
	LogCapabilities
	PrestigeCapabilities
	UICapabilities
	UtilCapabilities
	ScriptCapabilities
	EventCapabilities
}

// TaskCapabilities is the x.tasks group.
type TaskCapabilities interface {
	AddTask(ctx context.Context, data map[string]any) (model.Task, error)
	RemoveTask(ctx context.Context, id string) (bool, error)
	CompleteTask(ctx context.Context, id string) (bool, error)
	TaskByID(id string) (model.Task, bool)
	AllTasks() []model.Task
	Todos() []model.Task
	Logs() []model.LogEntry
}

// InventoryCapabilities is the x.inventory group.
type InventoryCapabilities interface {
	AddItem(ctx context.Context, name string, amount int) (bool, error)
	RemoveItem(ctx context.Context, name string, amount int) (bool, error)
	Item(name string) (model.Item, bool)
	Items() []model.Item
	ItemTotal(name string) int
}

// AchievementCapabilities is the x.achievements group.
type AchievementCapabilities interface {
	Unlock(ctx context.Context, name, description string) (bool, error)
	Achievement(name string) (model.Achievement, bool)
	Achievements() []model.Achievement
	IsUnlocked(name string) bool
}

// RewardCapabilities is the x.rewards group.
type RewardCapabilities interface {
	UseReward(ctx context.Context, id string, useCtx map[string]any) (bool, error)
	AddReward(ctx context.Context, data map[string]any) (model.Reward, error)
	Rewards() []model.Reward
	Reward(id string) (model.Reward, bool)
}

// LogCapabilities is the x.logs group. getAllLogs maps to Logs.
type LogCapabilities interface {
	AddLog(ctx context.Context, data map[string]any) (model.LogEntry, error)
	LogByID(id string) (model.LogEntry, bool)
}

// PrestigeCapabilities is the x.prestige group.
type PrestigeCapabilities interface {
	AddPrestige(ctx context.Context, n int) (int, error)
	PrestigePoints() int
	PrestigeSettings() model.PrestigeSettings
	PrestigeLevel() progression.Tier
}

// UICapabilities is the x.ui group.
type UICapabilities interface {
	Notify(ctx context.Context, message, kind string) error
	LogMessage(message string)
	Toast(message, kind string)
}

// UtilCapabilities backs the x.utils group.
type UtilCapabilities interface {
	Now() time.Time
	RandomInt(min, max int) int
	Streak(tasks []model.Task, days int) int
}

// ScriptCapabilities is the x.scripts group.
type ScriptCapabilities interface {
	Scripts() []model.Script
	Script(id string) (model.Script, bool)
	ExecuteScript(ctx context.Context, id string, sc Context) (any, bool, error)
}

// EventCapabilities is the x.events group.
type EventCapabilities interface {
	Trigger(ctx context.Context, name string, data map[string]any) error
	EventHistory() []model.Event
}
