package script

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/model"
)

func TestNewEventContext(t *testing.T) {
	data := map[string]any{"itemName": "gold", "event": "shadowed"}
	sc := NewEventContext("onInventoryAdd", data)

	assert.Equal(t, "shadowed", sc.Event())
	assert.Equal(t, data, sc["eventData"])
	assert.Equal(t, "gold", sc["itemName"])
}

func TestContext_Accessors(t *testing.T) {
	sc := Context{"event": "test", "task": map[string]any{"id": "test-task"}}
	assert.Equal(t, "test", sc.Event())
	assert.Equal(t, map[string]any{"id": "test-task"}, sc.Task())

	empty := Context{}
	assert.Equal(t, "", empty.Event())
	assert.Nil(t, empty.Task())
}

func TestRuntime_ExecuteWrapsHostError(t *testing.T) {
	host := HostFunc(func(context.Context, string, Capabilities, Context) (any, error) {
		return nil, errors.New("nope")
	})
	rt := NewRuntime(host)

	_, err := rt.Execute(context.Background(), model.Script{ID: "s1", Name: "Bonus"}, newFakeCaps(), Context{"event": "onTaskComplete"})
	require.Error(t, err)
	assert.True(t, IsExecError(err))

	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "s1", ee.ScriptID)
	assert.Equal(t, "onTaskComplete", ee.Event)
	assert.EqualError(t, ee.Err, "nope")
}

func TestRuntime_ExecuteRecoversPanic(t *testing.T) {
	host := HostFunc(func(context.Context, string, Capabilities, Context) (any, error) {
		panic("kaboom")
	})
	rt := NewRuntime(host)

	_, err := rt.Execute(context.Background(), model.Script{ID: "s1", Name: "Bad"}, newFakeCaps(), nil)
	require.Error(t, err)
	assert.True(t, IsExecError(err))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestRuntime_ExecutePassesSource(t *testing.T) {
	var seen string
	host := HostFunc(func(_ context.Context, source string, _ Capabilities, sc Context) (any, error) {
		seen = source
		return sc.Event(), nil
	})
	rt := NewRuntime(host)

	got, err := rt.Execute(context.Background(), model.Script{Code: "return 1"}, newFakeCaps(), Context{"event": "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", got)
	assert.Equal(t, "return 1", seen)
}

func TestRuntime_ExecuteWithLua(t *testing.T) {
	rt := NewRuntime(NewLuaHost())
	caps := newFakeCaps()

	s := model.Script{ID: "s1", Name: "Gold", Code: `x.inventory.addItem("gold", context.amount)`}
	_, err := rt.Execute(context.Background(), s, caps, Context{"amount": 4})
	require.NoError(t, err)
	assert.Equal(t, 4, caps.items["gold"])
}
