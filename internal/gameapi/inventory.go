package gameapi

import (
	"context"

	"github.com/roach88/gamify/internal/model"
)

// AddItem adds amount units of name, creating the record if needed. A
// non-positive amount is a no-op reporting false. Emits onInventoryAdd with
// the new total.
func (a *API) AddItem(ctx context.Context, name string, amount int) (bool, error) {
	fresh := model.Item{
		ID:          a.ids.NewID(),
		Description: "added by script",
		EarnedAt:    a.clock.Now(),
	}
	item, ok, err := a.store.GrantItem(ctx, name, amount, fresh)
	if err != nil || !ok {
		return false, err
	}
	a.logger.Debug("item added", "item", name, "amount", amount, "total", item.Amount)
	return true, a.emit(ctx, model.EventInventoryAdd, map[string]any{
		"itemName":    name,
		"amount":      amount,
		"totalAmount": item.Amount,
	})
}

// RemoveItem takes amount units of name. It reports false, changing
// nothing, when fewer are held. Emits onInventoryRemove with what remains.
func (a *API) RemoveItem(ctx context.Context, name string, amount int) (bool, error) {
	remaining, ok, err := a.store.TakeItem(ctx, name, amount)
	if err != nil || !ok {
		return false, err
	}
	return true, a.emit(ctx, model.EventInventoryRemove, map[string]any{
		"itemName":        name,
		"amount":          amount,
		"remainingAmount": remaining,
	})
}

// Item looks up an inventory record by name.
func (a *API) Item(name string) (model.Item, bool) {
	return a.store.Item(name)
}

// Items returns the inventory.
func (a *API) Items() []model.Item {
	return a.store.Items()
}

// ItemTotal returns how many units of name are held.
func (a *API) ItemTotal(name string) int {
	it, _ := a.store.Item(name)
	return it.Amount
}

// UseItem consumes one unit of the record with id.
func (a *API) UseItem(ctx context.Context, id string) (bool, error) {
	return a.store.ConsumeItem(ctx, id)
}

// DeleteItem removes the record with id entirely.
func (a *API) DeleteItem(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveItem(ctx, id)
}
