package script

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Shopify/go-lua"

	"github.com/roach88/gamify/internal/model"
)

// LuaHost runs scripts as Lua chunks. Every Run uses a fresh interpreter, so
// nothing leaks between invocations.
type LuaHost struct{}

// NewLuaHost creates a LuaHost.
func NewLuaHost() *LuaHost {
	return &LuaHost{}
}

// Run loads source as a chunk and calls it with globals x, task and context
// bound. The chunk's first return value is converted back to Go.
func (h *LuaHost) Run(ctx context.Context, source string, caps Capabilities, sc Context) (result any, err error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	b := &binding{ctx: ctx, caps: caps}
	b.push(state)
	state.SetGlobal("x")

	pushValue(state, map[string]any(sc))
	state.SetGlobal("context")
	pushValue(state, sc.Task())
	state.SetGlobal("task")

	if err := lua.LoadBuffer(state, source, "=script", ""); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, err
	}
	return luaToGo(state, -1), nil
}

// binding exposes caps to one interpreter. It lives only for one Run.
type binding struct {
	ctx  context.Context
	caps Capabilities
}

type group struct {
	name      string
	functions []lua.RegistryFunction
}

func (b *binding) push(state *lua.State) {
	groups := []group{
		{"tasks", b.taskFunctions()},
		{"inventory", b.inventoryFunctions()},
		{"achievements", b.achievementFunctions()},
		{"rewards", b.rewardFunctions()},
		{"logs", b.logFunctions()},
		{"prestige", b.prestigeFunctions()},
		{"ui", b.uiFunctions()},
		{"utils", b.utilFunctions()},
		{"scripts", b.scriptFunctions()},
		{"events", b.eventFunctions()},
	}

	state.CreateTable(0, len(groups))
	for _, g := range groups {
		state.CreateTable(0, len(g.functions))
		lua.SetFunctions(state, g.functions, 0)
		state.SetField(-2, g.name)
	}
}

func raise(state *lua.State, err error) int {
	lua.Errorf(state, "%s", err.Error())
	return 0
}

func pushFound[T any](state *lua.State, v T, ok bool) int {
	if !ok {
		state.PushNil()
		return 1
	}
	pushValue(state, v)
	return 1
}

func (b *binding) taskFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "addTask", Function: func(state *lua.State) int {
			lua.CheckType(state, 1, lua.TypeTable)
			task, err := b.caps.AddTask(b.ctx, tableToMap(state, 1))
			if err != nil {
				return raise(state, err)
			}
			pushValue(state, task)
			return 1
		}},
		{Name: "removeTask", Function: func(state *lua.State) int {
			ok, err := b.caps.RemoveTask(b.ctx, lua.CheckString(state, 1))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "completeTask", Function: func(state *lua.State) int {
			ok, err := b.caps.CompleteTask(b.ctx, lua.CheckString(state, 1))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "getTaskById", Function: func(state *lua.State) int {
			task, ok := b.caps.TaskByID(lua.CheckString(state, 1))
			return pushFound(state, task, ok)
		}},
		{Name: "getAllTasks", Function: func(state *lua.State) int {
			pushValue(state, b.caps.AllTasks())
			return 1
		}},
		{Name: "getTodos", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Todos())
			return 1
		}},
		{Name: "getLogs", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Logs())
			return 1
		}},
	}
}

func (b *binding) inventoryFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "addItem", Function: func(state *lua.State) int {
			ok, err := b.caps.AddItem(b.ctx, lua.CheckString(state, 1), lua.OptInteger(state, 2, 1))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "removeItem", Function: func(state *lua.State) int {
			ok, err := b.caps.RemoveItem(b.ctx, lua.CheckString(state, 1), lua.OptInteger(state, 2, 1))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "getItem", Function: func(state *lua.State) int {
			item, ok := b.caps.Item(lua.CheckString(state, 1))
			return pushFound(state, item, ok)
		}},
		{Name: "getAllItems", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Items())
			return 1
		}},
		{Name: "getTotal", Function: func(state *lua.State) int {
			state.PushInteger(b.caps.ItemTotal(lua.CheckString(state, 1)))
			return 1
		}},
	}
}

func (b *binding) achievementFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "unlock", Function: func(state *lua.State) int {
			ok, err := b.caps.Unlock(b.ctx, lua.CheckString(state, 1), lua.OptString(state, 2, ""))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "getAchievement", Function: func(state *lua.State) int {
			a, ok := b.caps.Achievement(lua.CheckString(state, 1))
			return pushFound(state, a, ok)
		}},
		{Name: "getAllAchievements", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Achievements())
			return 1
		}},
		{Name: "isUnlocked", Function: func(state *lua.State) int {
			state.PushBoolean(b.caps.IsUnlocked(lua.CheckString(state, 1)))
			return 1
		}},
	}
}

func (b *binding) rewardFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "getAllRewards", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Rewards())
			return 1
		}},
		{Name: "getReward", Function: func(state *lua.State) int {
			r, ok := b.caps.Reward(lua.CheckString(state, 1))
			return pushFound(state, r, ok)
		}},
		{Name: "useReward", Function: func(state *lua.State) int {
			ok, err := b.caps.UseReward(b.ctx, lua.CheckString(state, 1), tableToMap(state, 2))
			if err != nil {
				return raise(state, err)
			}
			state.PushBoolean(ok)
			return 1
		}},
		{Name: "addReward", Function: func(state *lua.State) int {
			lua.CheckType(state, 1, lua.TypeTable)
			r, err := b.caps.AddReward(b.ctx, tableToMap(state, 1))
			if err != nil {
				return raise(state, err)
			}
			pushValue(state, r)
			return 1
		}},
	}
}

func (b *binding) logFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "getAllLogs", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Logs())
			return 1
		}},
		{Name: "addLog", Function: func(state *lua.State) int {
			lua.CheckType(state, 1, lua.TypeTable)
			l, err := b.caps.AddLog(b.ctx, tableToMap(state, 1))
			if err != nil {
				return raise(state, err)
			}
			pushValue(state, l)
			return 1
		}},
		{Name: "getLogById", Function: func(state *lua.State) int {
			l, ok := b.caps.LogByID(lua.CheckString(state, 1))
			return pushFound(state, l, ok)
		}},
	}
}

func (b *binding) prestigeFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "getPoints", Function: func(state *lua.State) int {
			state.PushInteger(b.caps.PrestigePoints())
			return 1
		}},
		{Name: "getSettings", Function: func(state *lua.State) int {
			pushValue(state, b.caps.PrestigeSettings())
			return 1
		}},
		{Name: "addPoints", Function: func(state *lua.State) int {
			total, err := b.caps.AddPrestige(b.ctx, lua.CheckInteger(state, 1))
			if err != nil {
				return raise(state, err)
			}
			state.PushInteger(total)
			return 1
		}},
		{Name: "getLevel", Function: func(state *lua.State) int {
			pushValue(state, b.caps.PrestigeLevel())
			return 1
		}},
	}
}

func (b *binding) uiFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "notify", Function: func(state *lua.State) int {
			if err := b.caps.Notify(b.ctx, lua.CheckString(state, 1), lua.OptString(state, 2, "info")); err != nil {
				return raise(state, err)
			}
			return 0
		}},
		{Name: "log", Function: func(state *lua.State) int {
			b.caps.LogMessage(lua.CheckString(state, 1))
			return 0
		}},
		{Name: "toast", Function: func(state *lua.State) int {
			b.caps.Toast(lua.CheckString(state, 1), lua.OptString(state, 2, "success"))
			return 0
		}},
	}
}

func (b *binding) utilFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "getCurrentDate", Function: func(state *lua.State) int {
			state.PushString(b.caps.Now().Format(time.RFC3339))
			return 1
		}},
		{Name: "formatDate", Function: func(state *lua.State) int {
			t, err := time.Parse(time.RFC3339, lua.CheckString(state, 1))
			if err != nil {
				state.PushString("Invalid Date")
				return 1
			}
			state.PushString(FormatDate(t))
			return 1
		}},
		{Name: "getDaysAgo", Function: func(state *lua.State) int {
			days := lua.CheckInteger(state, 1)
			state.PushString(DaysAgo(b.caps.Now(), days).Format(time.RFC3339))
			return 1
		}},
		{Name: "getRandomInt", Function: func(state *lua.State) int {
			state.PushInteger(b.caps.RandomInt(lua.CheckInteger(state, 1), lua.CheckInteger(state, 2)))
			return 1
		}},
		{Name: "getRandomChoice", Function: func(state *lua.State) int {
			lua.CheckType(state, 1, lua.TypeTable)
			list, _ := tableToGo(state, 1).([]any)
			if len(list) == 0 {
				state.PushNil()
				return 1
			}
			pushValue(state, list[b.caps.RandomInt(0, len(list)-1)])
			return 1
		}},
		{Name: "calculateStreak", Function: func(state *lua.State) int {
			lua.CheckType(state, 1, lua.TypeTable)
			var tasks []model.Task
			if err := decodeInto(tableToGo(state, 1), &tasks); err != nil {
				return raise(state, fmt.Errorf("calculateStreak: %w", err))
			}
			state.PushInteger(b.caps.Streak(tasks, lua.OptInteger(state, 2, 7)))
			return 1
		}},
	}
}

func (b *binding) scriptFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "getAllScripts", Function: func(state *lua.State) int {
			pushValue(state, b.caps.Scripts())
			return 1
		}},
		{Name: "getScript", Function: func(state *lua.State) int {
			s, ok := b.caps.Script(lua.CheckString(state, 1))
			return pushFound(state, s, ok)
		}},
		{Name: "executeScript", Function: func(state *lua.State) int {
			result, ok, err := b.caps.ExecuteScript(b.ctx, lua.CheckString(state, 1), Context(tableToMap(state, 2)))
			if err != nil {
				return raise(state, err)
			}
			return pushFound(state, result, ok)
		}},
	}
}

func (b *binding) eventFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "trigger", Function: func(state *lua.State) int {
			if err := b.caps.Trigger(b.ctx, lua.CheckString(state, 1), tableToMap(state, 2)); err != nil {
				return raise(state, err)
			}
			return 0
		}},
		{Name: "getEventHistory", Function: func(state *lua.State) int {
			pushValue(state, b.caps.EventHistory())
			return 1
		}},
	}
}

// FormatDate renders t as a Turkish-locale short date (dd.mm.yyyy).
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// DaysAgo returns now minus the given number of whole days.
func DaysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// pushValue pushes a Go value as its Lua equivalent. Values other than
// JSON-like primitives, maps and slices go through a JSON round trip so
// records appear to scripts with their persisted field names.
func pushValue(state *lua.State, v any) {
	switch v := v.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(v)
	case string:
		state.PushString(v)
	case int:
		state.PushInteger(v)
	case int64:
		state.PushInteger(int(v))
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			state.PushInteger(int(v))
		} else {
			state.PushNumber(v)
		}
	case map[string]any:
		state.CreateTable(0, len(v))
		for k, item := range v {
			pushValue(state, item)
			state.SetField(-2, k)
		}
	case []any:
		state.CreateTable(len(v), 0)
		for i, item := range v {
			pushValue(state, item)
			state.RawSetInt(-2, i+1)
		}
	default:
		pushValue(state, toPlain(v))
	}
}

func toPlain(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func decodeInto(v any, dst any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo converts a sequence table to []any and anything else to a map.
// An empty table becomes an empty map.
func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

// maxExactInt is the largest magnitude a float64 holds as an exact integer.
const maxExactInt = 1 << 53

// normalizeNumber turns whole numbers into int. NaN, infinities and values
// too large to convert exactly stay float64 for the receiver to reject.
func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) <= maxExactInt {
		return int(value)
	}
	return value
}
