package gameapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

func TestAddTask_Defaults(t *testing.T) {
	f := newFixture(t)

	task, err := f.api.AddTask(context.Background(), map[string]any{"name": "Read"})
	require.NoError(t, err)

	assert.Equal(t, model.Task{
		ID:              "id-1",
		Name:            "Read",
		Points:          model.Points{},
		Date:            at(0),
		Status:          model.TaskPending,
		Priority:        "normal",
		ItemRewards:     map[string]int{},
		SelectedScripts: []string{},
		CreatedAt:       at(0),
	}, task)

	ev := f.lastEvent(t)
	assert.Equal(t, model.EventTaskAdd, ev.Name)
	assert.Equal(t, map[string]any{"task": task}, ev.Data)
}

func TestAddTask_FromScriptTable(t *testing.T) {
	f := newFixture(t)
	s := f.addScript(t, "planner", `
		local t = x.tasks.addTask({
			name = "Stretch",
			points = {saglik = 3},
			itemRewards = {gold = 2},
			priority = "high",
		})
		return t.id
	`)

	id, ok, err := f.api.ExecuteScript(context.Background(), s.ID, nil)
	require.NoError(t, err)
	require.True(t, ok)

	task, found := f.api.TaskByID(id.(string))
	require.True(t, found)
	assert.Equal(t, "Stretch", task.Name)
	assert.Equal(t, model.Points{"saglik": 3}, task.Points)
	assert.Equal(t, map[string]int{"gold": 2}, task.ItemRewards)
	assert.Equal(t, "high", task.Priority)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.api.CreateTask(ctx, TaskInput{Name: "  "})
	assert.True(t, IsValidationError(err))

	_, err = f.api.CreateTask(ctx, TaskInput{Name: "Run", Points: "saglik"})
	var pv *points.ValidationError
	assert.True(t, errors.As(err, &pv))

	_, err = f.api.CreateTask(ctx, TaskInput{Name: "Run", ItemRewards: map[string]int{"gold": 0}})
	assert.True(t, IsValidationError(err))

	_, err = f.api.CreateTask(ctx, TaskInput{Name: "Run", SelectedScripts: []string{"ghost"}})
	assert.True(t, IsValidationError(err))

	assert.Empty(t, f.api.AllTasks())
	assert.Empty(t, f.store.History())
}

func TestCompleteTask_Procedure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := f.api.CreateTask(ctx, TaskInput{
		Name:        "Clean",
		Description: "kitchen",
		Points:      "temizlik:10",
		ItemRewards: map[string]int{"gold": 5, "gem": 1},
	})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	ok, err := f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 5, f.api.ItemTotal("gold"))
	assert.Equal(t, 1, f.api.ItemTotal("gem"))
	gold, _ := f.api.Item("gold")
	assert.Equal(t, "earned from task Clean", gold.Description)

	logs := f.api.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Clean", logs[0].Name)
	assert.Equal(t, "kitchen (task completed)", logs[0].Description)
	assert.Equal(t, model.Points{"temizlik": 10}, logs[0].Points)

	done, _ := f.api.TaskByID(task.ID)
	assert.True(t, done.Completed)
	assert.Equal(t, model.TaskCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, at(time.Hour), *done.CompletedAt)
	assert.Empty(t, f.api.Todos())

	ok, err = f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok, "already completed")

	ok, err = f.api.CompleteTask(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompleteTask_DispatchesPerSelectedScript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addScript(t, "first", `x.inventory.addItem("a-" .. task.name, 1)`, "never")
	second := f.addScript(t, "second", `x.inventory.addItem("b-" .. context.task.name, 1)`, "never")
	bystander := f.addScript(t, "bystander", `x.inventory.addItem("c", 1)`, model.EventTaskComplete)
	_ = bystander

	task, err := f.api.AddTask(ctx, map[string]any{"name": "Read"})
	require.NoError(t, err)
	task.SelectedScripts = []string{first.ID, "deleted-script", second.ID}
	_, err = f.store.ReplaceTask(ctx, task)
	require.NoError(t, err)

	ok, err := f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1, f.api.ItemTotal("a-Read"))
	assert.Equal(t, 1, f.api.ItemTotal("b-Read"))
	assert.Equal(t, 0, f.api.ItemTotal("c"), "targeted dispatch ignores subscriptions")
	assert.Equal(t, []string{
		model.EventTaskAdd,
		model.EventTaskComplete,
		model.EventInventoryAdd,
		model.EventTaskComplete,
		model.EventInventoryAdd,
	}, f.eventNames())
}

func TestCompleteTask_ScriptFailureDoesNotFailCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := f.addScript(t, "broken", `error("nope")`)

	task, err := f.api.CreateTask(ctx, TaskInput{Name: "Walk", SelectedScripts: []string{broken.ID}})
	require.NoError(t, err)

	ok, err := f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.api.Logs(), 1)
}

func TestCompleteThenUndo_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.api.AddItem(ctx, "gold", 2)
	require.NoError(t, err)
	task, err := f.api.CreateTask(ctx, TaskInput{Name: "Dig", Points: "kazma:4", ItemRewards: map[string]int{"gold": 5}})
	require.NoError(t, err)

	ok, err := f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, f.api.ItemTotal("gold"))

	ok, err = f.api.UndoTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 2, f.api.ItemTotal("gold"))
	reverted, _ := f.api.TaskByID(task.ID)
	assert.False(t, reverted.Completed)
	assert.Nil(t, reverted.CompletedAt)
	assert.Equal(t, model.TaskPending, reverted.Status)
	assert.Len(t, f.api.Logs(), 1, "completion log stays")
	assert.Equal(t, 4, f.store.Cumulative("kazma"))

	ok, err = f.api.UndoTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok, "only completed tasks can be undone")
}

func TestUndoTask_FloorsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := f.api.CreateTask(ctx, TaskInput{Name: "Mine", ItemRewards: map[string]int{"ore": 5}})
	require.NoError(t, err)
	_, err = f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	_, err = f.api.RemoveItem(ctx, "ore", 4)
	require.NoError(t, err)

	ok, err := f.api.UndoTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, found := f.api.Item("ore")
	assert.False(t, found)
}

func TestRemoveTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := f.api.AddTask(ctx, map[string]any{"name": "Temp"})
	require.NoError(t, err)

	ok, err := f.api.RemoveTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.EventTaskRemove, f.lastEvent(t).Name)
	assert.Empty(t, f.api.AllTasks())

	ok, err = f.api.RemoveTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveTask_Completed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, err := f.api.AddTask(ctx, map[string]any{"name": "Done", "points": "x:5"})
	require.NoError(t, err)
	ok, err := f.api.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.api.RemoveTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ev := f.lastEvent(t)
	assert.Equal(t, model.EventTaskRemove, ev.Name)
	removed, _ := ev.Data["task"].(model.Task)
	assert.True(t, removed.Completed)
	assert.Empty(t, f.api.AllTasks())
	// The completion log stays.
	assert.Equal(t, 5, f.store.Cumulative("x"))
}
