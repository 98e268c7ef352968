package gameapi

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gamify/internal/model"
)

func TestAddItem_MergesByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.api.AddItem(ctx, "gold", 3)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.api.AddItem(ctx, "gold", 2)
	require.NoError(t, err)
	require.True(t, ok)

	items := f.api.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "gold", items[0].Name)
	assert.Equal(t, 5, items[0].Amount)
	assert.Equal(t, "added by script", items[0].Description)

	ev := f.lastEvent(t)
	assert.Equal(t, model.EventInventoryAdd, ev.Name)
	assert.Equal(t, map[string]any{"itemName": "gold", "amount": 2, "totalAmount": 5}, ev.Data)
}

func TestAddItem_NonPositiveIsNoop(t *testing.T) {
	f := newFixture(t)

	ok, err := f.api.AddItem(context.Background(), "gold", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.api.Items())
	assert.Empty(t, f.store.History())
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.api.AddItem(ctx, "gold", 3)
	require.NoError(t, err)

	ok, err := f.api.RemoveItem(ctx, "gold", 5)
	require.NoError(t, err)
	assert.False(t, ok, "insufficient quantity")
	assert.Equal(t, 3, f.api.ItemTotal("gold"))
	assert.Len(t, f.store.History(), 1)

	ok, err = f.api.RemoveItem(ctx, "gold", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"itemName": "gold", "amount": 1, "remainingAmount": 2}, f.lastEvent(t).Data)

	ok, err = f.api.RemoveItem(ctx, "gold", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	_, found := f.api.Item("gold")
	assert.False(t, found, "record removed at zero")
	assert.Equal(t, 0, f.lastEvent(t).Data["remainingAmount"])

	ok, err = f.api.RemoveItem(ctx, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInventoryInvariant_RandomSequences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := rand.New(rand.NewPCG(7, 11))
	names := []string{"gold", "gem", "key"}

	for range 300 {
		name := names[r.IntN(len(names))]
		amount := r.IntN(5) - 1
		if r.IntN(2) == 0 {
			_, err := f.api.AddItem(ctx, name, amount)
			require.NoError(t, err)
		} else {
			_, err := f.api.RemoveItem(ctx, name, amount)
			require.NoError(t, err)
		}

		seen := map[string]bool{}
		for _, it := range f.api.Items() {
			require.Greater(t, it.Amount, 0, "item %s", it.Name)
			require.False(t, seen[it.Name], "duplicate record for %s", it.Name)
			seen[it.Name] = true
		}
	}
}

func TestUseAndDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.api.AddItem(ctx, "potion", 2)
	require.NoError(t, err)
	potion, _ := f.api.Item("potion")

	ok, err := f.api.UseItem(ctx, potion.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.api.ItemTotal("potion"))

	ok, err = f.api.UseItem(ctx, potion.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.api.Items())

	_, err = f.api.AddItem(ctx, "shield", 4)
	require.NoError(t, err)
	shield, _ := f.api.Item("shield")
	ok, err = f.api.DeleteItem(ctx, shield.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.api.Items())

	ok, err = f.api.UseItem(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestItemScriptsCascade(t *testing.T) {
	f := newFixture(t)
	f.addScript(t, "double", `
		if context.itemName == "gold" then
			x.inventory.addItem("silver", context.amount * 2)
		end
	`, model.EventInventoryAdd)

	_, err := f.api.AddItem(context.Background(), "gold", 2)
	require.NoError(t, err)

	assert.Equal(t, 4, f.api.ItemTotal("silver"))
	assert.Equal(t, []string{model.EventInventoryAdd, model.EventInventoryAdd}, f.eventNames())
	history := f.store.History()
	assert.Equal(t, history[0].Flow, history[1].Flow)
	assert.Equal(t, 1, history[1].Depth)
	assert.Equal(t, "flow-1", history[0].Flow)
}
