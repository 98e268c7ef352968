package gamefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func TestCompileString_AllSections(t *testing.T) {
	l := newLoader(t)
	def, err := l.CompileString(`
reward: Cinema: {
	description: "a night out"
	criteria:    "temizlik:100,egzersiz:50"
}
reward: Break: {}

achievement: Century: {
	criteria: "egzersiz:100"
	prestige: 25
}
achievement: Starter: criteria: "egzersiz:1"

recurring: Walk: {
	description: "daily"
	points:      "saglik:10"
}

script: greet: {
	events: ["onTaskComplete", "onLogAdd"]
	code:   "x.ui.notify('hi')"
}
`, "game.cue", "")
	require.NoError(t, err)

	assert.Equal(t, []Reward{
		{Name: "Cinema", Description: "a night out", Criteria: "temizlik:100,egzersiz:50"},
		{Name: "Break"},
	}, def.Rewards)

	require.Len(t, def.Achievements, 2)
	assert.Equal(t, "Century", def.Achievements[0].Name)
	require.NotNil(t, def.Achievements[0].Prestige)
	assert.Equal(t, 25, *def.Achievements[0].Prestige)
	assert.Nil(t, def.Achievements[1].Prestige)

	assert.Equal(t, []Recurring{{Name: "Walk", Description: "daily", Points: "saglik:10"}}, def.Recurring)
	assert.Equal(t, []Script{{
		Name:   "greet",
		Events: []string{"onTaskComplete", "onLogAdd"},
		Code:   "x.ui.notify('hi')",
	}}, def.Scripts)
	assert.False(t, def.Empty())
}

func TestCompileString_QuotedNames(t *testing.T) {
	l := newLoader(t)
	def, err := l.CompileString(`reward: "Movie night": criteria: "fun:5"`, "game.cue", "")
	require.NoError(t, err)
	require.Len(t, def.Rewards, 1)
	assert.Equal(t, "Movie night", def.Rewards[0].Name)
}

func TestCompileString_Empty(t *testing.T) {
	def, err := newLoader(t).CompileString(``, "game.cue", "")
	require.NoError(t, err)
	assert.True(t, def.Empty())
}

func TestCompileString_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown section":   `quest: A: {}`,
		"unknown field":     `reward: A: color: "red"`,
		"missing criteria":  `achievement: A: description: "x"`,
		"prestige too high": `achievement: A: {criteria: "a:1", prestige: 5000}`,
		"wrong type":        `recurring: A: points: 10`,
		"events not list":   `script: A: {code: "return 1", events: "onLogAdd"}`,
	}
	l := newLoader(t)
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.CompileString(src, "game.cue", "")
			assert.Error(t, err)
		})
	}
}

func TestCompileString_InvalidPoints(t *testing.T) {
	_, err := newLoader(t).CompileString("achievement: A: {\n\tcriteria: \"egzersiz\"\n}\n", "game.cue", "")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "criteria", ce.Field)
}

func TestCompileString_ScriptSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "streak.lua"), []byte("return 7\n"), 0o644))
	l := newLoader(t)

	def, err := l.CompileString(`script: streak: file: "streak.lua"`, "game.cue", dir)
	require.NoError(t, err)
	assert.Equal(t, "return 7\n", def.Scripts[0].Code)

	_, err = l.CompileString(`script: s: {}`, "game.cue", dir)
	assert.ErrorContains(t, err, "code or file is required")

	_, err = l.CompileString(`script: s: {code: "return 1", file: "streak.lua"}`, "game.cue", dir)
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = l.CompileString(`script: s: file: "missing.lua"`, "game.cue", dir)
	assert.ErrorContains(t, err, "script.s.file")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("rewards.cue", "package game\n\nreward: Cinema: criteria: \"fun:10\"\n")
	write("achievements.cue", "package game\n\nachievement: Fun: criteria: \"fun:1\"\n")
	write("notes.txt", "ignored")

	def, err := newLoader(t).LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, def.Rewards, 1)
	assert.Len(t, def.Achievements, 1)
}

func TestLoadDir_Errors(t *testing.T) {
	l := newLoader(t)

	_, err := l.LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = l.LoadDir(t.TempDir())
	assert.ErrorContains(t, err, "no CUE files")
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.cue")
	require.NoError(t, os.WriteFile(path, []byte(`recurring: Walk: points: "saglik:10"`), 0o644))

	def, err := newLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Walk", def.Recurring[0].Name)
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.cue"), nil, 0o644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue")}, files)
}
