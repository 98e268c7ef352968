package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.cue"), []byte(`recurring: Walk: points: "egzersiz:5"`), 0644))
	path := writeScenario(t, dir, `
name: walk
description: "applying a template logs points"
game: game.cue
max_depth: 4
flow:
  - op: apply_recurring
    args: {name: Walk}
assertions:
  - type: final_state
    table: totals
    where: {skill: egzersiz}
    expect: {points: 5}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "walk", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "game.cue"), scenario.Game)
	assert.Equal(t, 4, scenario.MaxDepth)
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, "apply_recurring", scenario.Flow[0].Op)
	assert.Equal(t, "Walk", scenario.Flow[0].Args["name"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: d
flow:
  - op: status
assertion:
  - type: event_count
    event: x
`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			content: "name: n\ndescription: d\nassertions: [{type: event_count, event: x}]",
			wantErr: "flow list is required",
		},
		{
			name:    "no assertions",
			content: "name: n\ndescription: d\nflow: [{op: status}]",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown op",
			content: "name: n\ndescription: d\nflow: [{op: teleport}]\nassertions: [{type: event_count, event: x}]",
			wantErr: `flow[0]: unknown op "teleport"`,
		},
		{
			name:    "expect in setup",
			content: "name: n\ndescription: d\nsetup: [{op: status, expect: {ok: true}}]\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "expect is only allowed in flow steps",
		},
		{
			name:    "script without code",
			content: "name: n\ndescription: d\nscripts: [{name: s}]\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "scripts[0]: code is required",
		},
		{
			name:    "missing game file",
			content: "name: n\ndescription: d\ngame: /nonexistent/game.cue\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "game file not found",
		},
		{
			name:    "negative limit",
			content: "name: n\ndescription: d\nmax_steps: -1\nflow: [{op: status}]\nassertions: [{type: event_count, event: x}]",
			wantErr: "engine limits must be non-negative",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\nflow: [{op: status}]\nassertions: [{type: vibes}]",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "unknown table",
			content: "name: n\ndescription: d\nflow: [{op: status}]\nassertions: [{type: final_state, table: users, expect: {a: 1}}]",
			wantErr: `unknown table "users"`,
		},
		{
			name:    "final_state without expect",
			content: "name: n\ndescription: d\nflow: [{op: status}]\nassertions: [{type: final_state, table: tasks}]",
			wantErr: "expect is required for final_state",
		},
		{
			name:    "event_order without events",
			content: "name: n\ndescription: d\nflow: [{op: status}]\nassertions: [{type: event_order}]",
			wantErr: "events list is required",
		},
		{
			name:    "notified without message",
			content: "name: n\ndescription: d\nflow: [{op: status}]\nassertions: [{type: notified}]",
			wantErr: "message is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpNames_Sorted(t *testing.T) {
	names := OpNames()
	assert.Contains(t, names, "complete_task")
	assert.Contains(t, names, "trigger")
	assert.IsNonDecreasing(t, names)
}
