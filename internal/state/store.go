package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// DefaultHistoryLimit is the number of events kept in the history buffer.
const DefaultHistoryLimit = 100

// Store owns all game collections. Records returned by accessors are copies
// of the slice elements; their map fields are shared and must be treated as
// read-only.
type Store struct {
	mu           sync.RWMutex
	kv           KV
	historyLimit int

	tasks        []model.Task
	logs         []model.LogEntry
	items        []model.Item
	rewards      []model.Reward
	achievements []model.Achievement
	recurring    []model.Recurring
	prestige     int
	settings     model.PrestigeSettings
	scripts      []model.Script
	history      []model.Event
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit sets the event history capacity. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// Open loads every collection from kv. Missing keys keep their defaults:
// empty collections, zero prestige and DefaultPrestigeSettings.
func Open(ctx context.Context, kv KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:           kv,
		historyLimit: DefaultHistoryLimit,
		settings:     model.DefaultPrestigeSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}

	loads := []struct {
		key string
		dst any
	}{
		{KeyTasks, &s.tasks},
		{KeyActions, &s.logs},
		{KeyInventory, &s.items},
		{KeyRewards, &s.rewards},
		{KeyAchievements, &s.achievements},
		{KeyRecurrents, &s.recurring},
		{KeyPrestigePoints, &s.prestige},
		{KeyPrestigeSettings, &s.settings},
		{KeyScripts, &s.scripts},
		{KeyEventHistory, &s.history},
	}
	for _, l := range loads {
		if err := s.load(ctx, l.key, l.dst); err != nil {
			return nil, err
		}
	}

	if len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// save writes the full value for key. Callers hold s.mu.
func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// HistoryLimit returns the event history capacity.
func (s *Store) HistoryLimit() int {
	return s.historyLimit
}

// --- tasks ---

// Tasks returns a snapshot of all tasks.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.tasks)
}

// Task looks up a task by id.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// AddTask appends a task.
func (s *Store) AddTask(ctx context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.tasks), t)
	if err := s.save(ctx, KeyTasks, next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// ReplaceTask overwrites the task with t.ID. Returns false if absent.
func (s *Store) ReplaceTask(ctx context.Context, t model.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replace(s.tasks, t, taskID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyTasks, next); err != nil {
		return false, err
	}
	s.tasks = next
	return true, nil
}

// RemoveTask deletes a task and returns the removed record.
func (s *Store) RemoveTask(ctx context.Context, id string) (model.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed, ok := remove(s.tasks, id, taskID)
	if !ok {
		return model.Task{}, false, nil
	}
	if err := s.save(ctx, KeyTasks, next); err != nil {
		return model.Task{}, false, err
	}
	s.tasks = next
	return removed, true, nil
}

// --- action log ---

// Logs returns a snapshot of the action log.
func (s *Store) Logs() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.logs)
}

// Log looks up a log entry by id.
func (s *Store) Log(id string) (model.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.logs, func(l model.LogEntry) bool { return l.ID == id })
}

// AppendLog adds an entry to the end of the action log.
func (s *Store) AppendLog(ctx context.Context, l model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.logs), l)
	if err := s.save(ctx, KeyActions, next); err != nil {
		return err
	}
	s.logs = next
	return nil
}

// ReplaceLog overwrites the entry with l.ID.
func (s *Store) ReplaceLog(ctx context.Context, l model.LogEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replace(s.logs, l, logID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyActions, next); err != nil {
		return false, err
	}
	s.logs = next
	return true, nil
}

// RemoveLog deletes a log entry.
func (s *Store) RemoveLog(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.logs, id, logID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyActions, next); err != nil {
		return false, err
	}
	s.logs = next
	return true, nil
}

// Cumulative returns the sum of every log contribution to skill.
func (s *Store) Cumulative(skill string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return points.Cumulative(s.logs, skill)
}

// Totals returns cumulative points for every skill seen in the log.
func (s *Store) Totals() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return points.Totals(s.logs)
}

// --- rewards ---

// Rewards returns a snapshot of all rewards.
func (s *Store) Rewards() []model.Reward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.rewards)
}

// Reward looks up a reward by id.
func (s *Store) Reward(id string) (model.Reward, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.rewards, func(r model.Reward) bool { return r.ID == id })
}

// AddReward appends a reward.
func (s *Store) AddReward(ctx context.Context, r model.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.rewards), r)
	if err := s.save(ctx, KeyRewards, next); err != nil {
		return err
	}
	s.rewards = next
	return nil
}

// RemoveReward deletes a reward.
func (s *Store) RemoveReward(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.rewards, id, rewardID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyRewards, next); err != nil {
		return false, err
	}
	s.rewards = next
	return true, nil
}

// --- achievements ---

// Achievements returns a snapshot of all achievements.
func (s *Store) Achievements() []model.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.achievements)
}

// Achievement looks up an achievement by id.
func (s *Store) Achievement(id string) (model.Achievement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.achievements, func(a model.Achievement) bool { return a.ID == id })
}

// AchievementByName returns the first achievement with the given name.
func (s *Store) AchievementByName(name string) (model.Achievement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.achievements, func(a model.Achievement) bool { return a.Name == name })
}

// AddAchievement appends an achievement.
func (s *Store) AddAchievement(ctx context.Context, a model.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.achievements), a)
	if err := s.save(ctx, KeyAchievements, next); err != nil {
		return err
	}
	s.achievements = next
	return nil
}

// ReplaceAchievement overwrites the achievement with a.ID.
func (s *Store) ReplaceAchievement(ctx context.Context, a model.Achievement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replace(s.achievements, a, achievementID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyAchievements, next); err != nil {
		return false, err
	}
	s.achievements = next
	return true, nil
}

// RemoveAchievement deletes an achievement.
func (s *Store) RemoveAchievement(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.achievements, id, achievementID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyAchievements, next); err != nil {
		return false, err
	}
	s.achievements = next
	return true, nil
}

// SetAchievements replaces the whole collection in one save.
func (s *Store) SetAchievements(ctx context.Context, list []model.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := snapshot(list)
	if err := s.save(ctx, KeyAchievements, next); err != nil {
		return err
	}
	s.achievements = next
	return nil
}

// --- recurring templates ---

// Recurrings returns a snapshot of all recurring templates.
func (s *Store) Recurrings() []model.Recurring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.recurring)
}

// Recurring looks up a template by id.
func (s *Store) Recurring(id string) (model.Recurring, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.recurring, func(r model.Recurring) bool { return r.ID == id })
}

// AddRecurring appends a template.
func (s *Store) AddRecurring(ctx context.Context, r model.Recurring) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.recurring), r)
	if err := s.save(ctx, KeyRecurrents, next); err != nil {
		return err
	}
	s.recurring = next
	return nil
}

// ReplaceRecurring overwrites the template with r.ID.
func (s *Store) ReplaceRecurring(ctx context.Context, r model.Recurring) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replace(s.recurring, r, recurringID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyRecurrents, next); err != nil {
		return false, err
	}
	s.recurring = next
	return true, nil
}

// RemoveRecurring deletes a template.
func (s *Store) RemoveRecurring(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.recurring, id, recurringID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyRecurrents, next); err != nil {
		return false, err
	}
	s.recurring = next
	return true, nil
}

// --- prestige ---

// Prestige returns the current prestige total.
func (s *Store) Prestige() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prestige
}

// AddPrestige adds n (which may be negative) and returns the totals before
// and after.
func (s *Store) AddPrestige(ctx context.Context, n int) (before, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before = s.prestige
	after = before + n
	if err := s.save(ctx, KeyPrestigePoints, after); err != nil {
		return before, before, err
	}
	s.prestige = after
	return before, after, nil
}

// PrestigeSettings returns the current prestige settings.
func (s *Store) PrestigeSettings() model.PrestigeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetPrestigeSettings replaces the prestige settings.
func (s *Store) SetPrestigeSettings(ctx context.Context, settings model.PrestigeSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, KeyPrestigeSettings, settings); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// --- scripts ---

// Scripts returns a snapshot of all scripts in registration order.
func (s *Store) Scripts() []model.Script {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.scripts)
}

// Script looks up a script by id.
func (s *Store) Script(id string) (model.Script, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.scripts, func(sc model.Script) bool { return sc.ID == id })
}

// ScriptByName returns the first script with the given name.
func (s *Store) ScriptByName(name string) (model.Script, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.scripts, func(sc model.Script) bool { return sc.Name == name })
}

// AddScript appends a script.
func (s *Store) AddScript(ctx context.Context, sc model.Script) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.scripts), sc)
	if err := s.save(ctx, KeyScripts, next); err != nil {
		return err
	}
	s.scripts = next
	return nil
}

// ReplaceScript overwrites the script with sc.ID.
func (s *Store) ReplaceScript(ctx context.Context, sc model.Script) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replace(s.scripts, sc, scriptID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyScripts, next); err != nil {
		return false, err
	}
	s.scripts = next
	return true, nil
}

// RemoveScript deletes a script.
func (s *Store) RemoveScript(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.scripts, id, scriptID)
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyScripts, next); err != nil {
		return false, err
	}
	s.scripts = next
	return true, nil
}

// --- event history ---

// History returns a snapshot of the event history, oldest first.
func (s *Store) History() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.history)
}

// AppendEvent records an event and trims the history to the most recent
// HistoryLimit entries.
func (s *Store) AppendEvent(ctx context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(snapshot(s.history), e)
	if len(next) > s.historyLimit {
		next = next[len(next)-s.historyLimit:]
	}
	if err := s.save(ctx, KeyEventHistory, next); err != nil {
		return err
	}
	s.history = next
	return nil
}

func taskID(t model.Task) string               { return t.ID }
func logID(l model.LogEntry) string            { return l.ID }
func rewardID(r model.Reward) string           { return r.ID }
func achievementID(a model.Achievement) string { return a.ID }
func recurringID(r model.Recurring) string     { return r.ID }
func scriptID(sc model.Script) string          { return sc.ID }
