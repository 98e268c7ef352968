package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runInline(t *testing.T, content string) *Result {
	t.Helper()
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)
	return result
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	result := runInline(t, `
name: wrong_expectations
description: every mismatch is reported without stopping the flow
flow:
  - op: add_task
    args: {name: Clean}
  - op: complete_task
    args: {name: Clean}
    expect: {ok: false}
  - op: add_item
    args: {name: coin, amount: 1}
    expect: {error: boom}
  - op: add_action
    args: {name: read, points: "okuma:abc"}
assertions:
  - type: event_count
    event: onTaskComplete
    count: 0
`)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "flow[1] complete_task: expected ok=false, got ok=true")
	assert.Contains(t, result.Errors[1], `flow[2] add_item: expected error containing "boom", got success`)
	assert.Contains(t, result.Errors[2], "flow[3] add_action: unexpected error")
}

func TestRun_SetupFailureIsAnError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: broken_setup
description: setup steps must succeed
setup:
  - op: complete_task
    args: {name: Missing}
flow:
  - op: status
assertions:
  - type: event_count
    event: onTaskAdd
    count: 0
`), "")
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] complete_task")
	assert.Contains(t, err.Error(), "not found")
}

func TestRun_ExpectErrorAndResult(t *testing.T) {
	result := runInline(t, `
name: expectations
description: error substrings and result subsets are checked
scripts:
  - name: calc
    code: return 21 * 2
  - name: broken
    code: error("broken on purpose")
flow:
  - op: run_script
    args: {name: calc}
    expect:
      result: {value: 42}
  - op: test_script
    args: {name: broken}
    expect: {ok: false}
  - op: add_action
    args: {name: "", points: "okuma:1"}
    expect: {error: name}
  - op: buy_reward
    args: {name: Nothing}
    expect: {error: not found}
assertions:
  - type: event_count
    event: onLogAdd
    count: 0
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UndoRoundTrip(t *testing.T) {
	result := runInline(t, `
name: undo
description: undoing a completion takes back items but keeps the log
flow:
  - op: add_task
    args: {name: Dishes, points: "temizlik:5", items: {coin: 3}}
  - op: complete_task
    args: {name: Dishes}
    expect: {ok: true}
  - op: undo_task
    args: {name: Dishes}
    expect: {ok: true}
  - op: undo_task
    args: {name: Dishes}
    expect: {ok: false}
assertions:
  - type: final_state
    table: tasks
    where: {name: Dishes}
    expect: {status: pending, completed: false, completedAt: null}
  - type: final_state
    table: totals
    where: {skill: temizlik}
    expect: {points: 5}
  - type: final_state
    table: logs
    where: {name: Dishes}
    expect: {description: "(task completed)"}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_LegacyMatchingAndNotifications(t *testing.T) {
	result := runInline(t, `
name: legacy
description: scripts without subscriptions match on their source text
scripts:
  - name: watcher
    code: |
      -- reacts to onLogAdd
      x.ui.notify("seen", "info")
flow:
  - op: add_log
    args: {name: read, points: "okuma:3"}
  - op: notify
    args: {message: hello}
assertions:
  - type: event_order
    events: [onLogAdd, onNotification, onNotification]
  - type: notified
    message: "info: seen"
  - type: notified
    message: "info: hello"
  - type: final_state
    table: totals
    where: {skill: okuma}
    expect: {points: 3}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"info: seen", "info: hello"}, result.Notifications)
}

func TestRun_AdvanceMovesTheClock(t *testing.T) {
	result := runInline(t, `
name: advance
description: advance shifts every later timestamp
flow:
  - op: advance
    args: {by: 24h}
  - op: add_action
    args: {name: run, points: "egzersiz:2"}
assertions:
  - type: final_state
    table: logs
    where: {name: run}
    expect: {date: "2024-01-02T09:00:00Z", points: {egzersiz: 2}}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_HistoryLimit(t *testing.T) {
	result := runInline(t, `
name: bounded
description: the trace holds only the most recent events
history_limit: 2
flow:
  - op: trigger
    args: {event: a}
  - op: trigger
    args: {event: b}
  - op: trigger
    args: {event: c, data: {n: 1}}
assertions:
  - type: event_count
    event: a
    count: 0
  - type: event_contains
    event: c
    data: {n: 1}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, int64(2), result.Trace[0].Seq)
	assert.Equal(t, "flow-3", result.Trace[1].Flow)
}

func TestRun_PrestigeOps(t *testing.T) {
	result := runInline(t, `
name: prestige
description: manual prestige and settings changes
flow:
  - op: prestige_settings
    args: {enabled: false, points_per_achievement: 40}
    expect:
      result: {enabled: false, pointsPerAchievement: 40}
  - op: unlock
    args: {name: Quiet}
    expect: {ok: true}
  - op: add_prestige
    args: {amount: 60}
    expect:
      result: {total: 60}
  - op: status
    expect:
      result: {prestige: 60, earned: 1, total: 1}
assertions:
  - type: event_order
    events: [onAchievementUnlock, onPrestigeChange]
  - type: event_count
    event: onPrestigeChange
    count: 1
  - type: final_state
    table: prestige
    expect: {points: 60, tier: Deneyimli, enabled: false}
  - type: final_state
    table: achievements
    where: {name: Quiet}
    expect: {earned: true, description: unlocked by script}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
