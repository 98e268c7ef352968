package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/testutil"
)

// session is the live game a scenario drives.
type session struct {
	ctx      context.Context
	api      *gameapi.API
	clock    *testutil.StepClock
	notifier *recordingNotifier
}

// outcome is what a step produced. OK is nil for operations without a
// boolean answer.
type outcome struct {
	OK     *bool
	Result map[string]any
}

type opFunc func(s *session, args map[string]any) (outcome, error)

var ops = map[string]opFunc{
	"add_action":         opAddAction,
	"add_log":            opAddLog,
	"add_task":           opAddTask,
	"complete_task":      opCompleteTask,
	"undo_task":          opUndoTask,
	"remove_task":        opRemoveTask,
	"add_item":           opAddItem,
	"remove_item":        opRemoveItem,
	"add_reward":         opAddReward,
	"buy_reward":         opBuyReward,
	"use_reward":         opUseReward,
	"add_achievement":    opAddAchievement,
	"unlock":             opUnlock,
	"check_achievements": opCheckAchievements,
	"add_recurring":      opAddRecurring,
	"apply_recurring":    opApplyRecurring,
	"add_prestige":       opAddPrestige,
	"prestige_settings":  opPrestigeSettings,
	"add_script":         opAddScript,
	"run_script":         opRunScript,
	"test_script":        opTestScript,
	"trigger":            opTrigger,
	"notify":             opNotify,
	"advance":            opAdvance,
	"status":             opStatus,
}

// OpNames lists the operations a scenario step may name, sorted.
func OpNames() []string {
	return slices.Sorted(maps.Keys(ops))
}

func opAddAction(s *session, args map[string]any) (outcome, error) {
	entry, err := s.api.AddAction(s.ctx, str(args, "name"), str(args, "description"), str(args, "points"))
	if err != nil {
		return outcome{}, err
	}
	return record(entry)
}

func opAddLog(s *session, args map[string]any) (outcome, error) {
	entry, err := s.api.AddLog(s.ctx, args)
	if err != nil {
		return outcome{}, err
	}
	return record(entry)
}

func opAddTask(s *session, args map[string]any) (outcome, error) {
	in := gameapi.TaskInput{
		Name:        str(args, "name"),
		Description: str(args, "description"),
		Points:      str(args, "points"),
		Priority:    str(args, "priority"),
		Category:    str(args, "category"),
		DueDate:     str(args, "due"),
		ExpReward:   integer(args, "exp"),
		ItemRewards: map[string]int{},
	}
	if items, ok := args["items"].(map[string]any); ok {
		for name, v := range items {
			n, ok := v.(int)
			if !ok {
				return outcome{}, fmt.Errorf("items.%s: expected an integer, got %T", name, v)
			}
			in.ItemRewards[name] = n
		}
	}
	for _, name := range strs(args, "scripts") {
		sc, ok := s.api.Store().ScriptByName(name)
		if !ok {
			return outcome{}, fmt.Errorf("script %q: %w", name, gameapi.ErrNotFound)
		}
		in.SelectedScripts = append(in.SelectedScripts, sc.ID)
	}
	task, err := s.api.CreateTask(s.ctx, in)
	if err != nil {
		return outcome{}, err
	}
	return record(task)
}

func opCompleteTask(s *session, args map[string]any) (outcome, error) {
	id, err := s.taskID(args)
	if err != nil {
		return outcome{}, err
	}
	return answer(s.api.CompleteTask(s.ctx, id))
}

func opUndoTask(s *session, args map[string]any) (outcome, error) {
	id, err := s.taskID(args)
	if err != nil {
		return outcome{}, err
	}
	return answer(s.api.UndoTask(s.ctx, id))
}

func opRemoveTask(s *session, args map[string]any) (outcome, error) {
	id, err := s.taskID(args)
	if err != nil {
		return outcome{}, err
	}
	return answer(s.api.RemoveTask(s.ctx, id))
}

func opAddItem(s *session, args map[string]any) (outcome, error) {
	return answer(s.api.AddItem(s.ctx, str(args, "name"), integer(args, "amount")))
}

func opRemoveItem(s *session, args map[string]any) (outcome, error) {
	return answer(s.api.RemoveItem(s.ctx, str(args, "name"), integer(args, "amount")))
}

func opAddReward(s *session, args map[string]any) (outcome, error) {
	r, err := s.api.CreateReward(s.ctx, str(args, "name"), str(args, "description"), str(args, "criteria"))
	if err != nil {
		return outcome{}, err
	}
	return record(r)
}

func opBuyReward(s *session, args map[string]any) (outcome, error) {
	id, err := s.rewardID(args)
	if err != nil {
		return outcome{}, err
	}
	entry, err := s.api.BuyReward(s.ctx, id)
	if err != nil {
		return outcome{}, err
	}
	return record(entry)
}

func opUseReward(s *session, args map[string]any) (outcome, error) {
	id, err := s.rewardID(args)
	if err != nil {
		return outcome{}, err
	}
	useCtx, _ := args["context"].(map[string]any)
	return answer(s.api.UseReward(s.ctx, id, useCtx))
}

func opAddAchievement(s *session, args map[string]any) (outcome, error) {
	in := gameapi.AchievementInput{
		Name:        str(args, "name"),
		Description: str(args, "description"),
		Criteria:    str(args, "criteria"),
	}
	if _, ok := args["prestige"]; ok {
		n := integer(args, "prestige")
		in.Prestige = &n
	}
	ach, err := s.api.AddAchievement(s.ctx, in)
	if err != nil {
		return outcome{}, err
	}
	return record(ach)
}

func opUnlock(s *session, args map[string]any) (outcome, error) {
	return answer(s.api.Unlock(s.ctx, str(args, "name"), str(args, "description")))
}

func opCheckAchievements(s *session, _ map[string]any) (outcome, error) {
	res, err := s.api.CheckAchievements(s.ctx)
	if err != nil {
		return outcome{}, err
	}
	names := make([]any, 0, len(res.Unlocked))
	for _, u := range res.Unlocked {
		names = append(names, u.Name)
	}
	return outcome{Result: map[string]any{
		"unlocked": names,
		"prestige": float64(res.PrestigeDelta),
	}}, nil
}

func opAddRecurring(s *session, args map[string]any) (outcome, error) {
	r, err := s.api.AddRecurring(s.ctx, str(args, "name"), str(args, "description"), str(args, "points"))
	if err != nil {
		return outcome{}, err
	}
	return record(r)
}

func opApplyRecurring(s *session, args map[string]any) (outcome, error) {
	name := str(args, "name")
	for _, r := range s.api.Recurrings() {
		if r.Name == name {
			entry, err := s.api.ApplyRecurring(s.ctx, r.ID)
			if err != nil {
				return outcome{}, err
			}
			return record(entry)
		}
	}
	return outcome{}, fmt.Errorf("recurring %q: %w", name, gameapi.ErrNotFound)
}

func opAddPrestige(s *session, args map[string]any) (outcome, error) {
	total, err := s.api.AddPrestige(s.ctx, integer(args, "amount"))
	if err != nil {
		return outcome{}, err
	}
	return outcome{Result: map[string]any{"total": float64(total)}}, nil
}

func opPrestigeSettings(s *session, args map[string]any) (outcome, error) {
	var u gameapi.SettingsUpdate
	if v, ok := args["enabled"].(bool); ok {
		u.Enabled = &v
	}
	if _, ok := args["points_per_achievement"]; ok {
		n := integer(args, "points_per_achievement")
		u.PointsPerAchievement = &n
	}
	settings, err := s.api.UpdatePrestigeSettings(s.ctx, u)
	if err != nil {
		return outcome{}, err
	}
	return record(settings)
}

func opAddScript(s *session, args map[string]any) (outcome, error) {
	sc, err := s.api.AddScript(s.ctx, gameapi.ScriptInput{
		Name:        str(args, "name"),
		Description: str(args, "description"),
		Code:        str(args, "code"),
		Events:      strs(args, "events"),
	})
	if err != nil {
		return outcome{}, err
	}
	return record(sc)
}

func opRunScript(s *session, args map[string]any) (outcome, error) {
	id, err := s.scriptID(args)
	if err != nil {
		return outcome{}, err
	}
	sc := script.Context{}
	if extra, ok := args["context"].(map[string]any); ok {
		maps.Copy(sc, extra)
	}
	value, _, err := s.api.ExecuteScript(s.ctx, id, sc)
	if err != nil {
		return outcome{}, err
	}
	return outcome{Result: normalize(map[string]any{"value": value})}, nil
}

func opTestScript(s *session, args map[string]any) (outcome, error) {
	id, err := s.scriptID(args)
	if err != nil {
		return outcome{}, err
	}
	res, err := s.api.TestScript(s.ctx, id)
	if err != nil {
		return outcome{}, err
	}
	ok := res.OK()
	out, err := record(res)
	out.OK = &ok
	return out, err
}

func opTrigger(s *session, args map[string]any) (outcome, error) {
	data, _ := args["data"].(map[string]any)
	return outcome{}, s.api.Trigger(s.ctx, str(args, "event"), data)
}

func opNotify(s *session, args map[string]any) (outcome, error) {
	return outcome{}, s.api.Notify(s.ctx, str(args, "message"), str(args, "kind"))
}

func opAdvance(s *session, args map[string]any) (outcome, error) {
	d, err := time.ParseDuration(str(args, "by"))
	if err != nil {
		return outcome{}, fmt.Errorf("advance: %w", err)
	}
	s.clock.Advance(d)
	return outcome{}, nil
}

func opStatus(s *session, _ map[string]any) (outcome, error) {
	return record(s.api.Status())
}

func (s *session) taskID(args map[string]any) (string, error) {
	name := str(args, "name")
	for _, t := range s.api.AllTasks() {
		if t.Name == name {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("task %q: %w", name, gameapi.ErrNotFound)
}

func (s *session) rewardID(args map[string]any) (string, error) {
	name := str(args, "name")
	for _, r := range s.api.Rewards() {
		if r.Name == name {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("reward %q: %w", name, gameapi.ErrNotFound)
}

func (s *session) scriptID(args map[string]any) (string, error) {
	name := str(args, "name")
	sc, ok := s.api.Store().ScriptByName(name)
	if !ok {
		return "", fmt.Errorf("script %q: %w", name, gameapi.ErrNotFound)
	}
	return sc.ID, nil
}

func answer(ok bool, err error) (outcome, error) {
	if err != nil {
		return outcome{}, err
	}
	return outcome{OK: &ok}, nil
}

func record(v any) (outcome, error) {
	m, ok := normalize(v).(map[string]any)
	if !ok {
		return outcome{}, fmt.Errorf("result %T is not a record", v)
	}
	return outcome{Result: m}, nil
}

// normalize round-trips v through JSON so results, payloads and YAML
// expectations compare as the same value kinds.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func str(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func integer(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func strs(args map[string]any, key string) []string {
	list, _ := args[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// recordingNotifier keeps every notification for the notified assertion.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message, kind string) {
	if kind != "" {
		message = kind + ": " + message
	}
	n.messages = append(n.messages, message)
}

var _ gameapi.Notifier = (*recordingNotifier)(nil)
