package state

import (
	"context"

	"github.com/roach88/gamify/internal/model"
)

// Inventory invariant: at most one record per name, every Amount > 0. The
// methods below are the only writers of s.items.

// Items returns a snapshot of the inventory.
func (s *Store) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.items)
}

// Item looks up an inventory record by name.
func (s *Store) Item(name string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.items, func(it model.Item) bool { return it.Name == name })
}

// ItemByID looks up an inventory record by id.
func (s *Store) ItemByID(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.items, func(it model.Item) bool { return it.ID == id })
}

// GrantItem adds amount units of name. When no record exists, fresh is
// stored with its Name and Amount overwritten. A non-positive amount is a
// no-op and reports false.
func (s *Store) GrantItem(ctx context.Context, name string, amount int, fresh model.Item) (model.Item, bool, error) {
	if amount <= 0 {
		return model.Item{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snapshot(s.items)
	var result model.Item
	idx := indexByName(next, name)
	if idx >= 0 {
		next[idx].Amount += amount
		result = next[idx]
	} else {
		fresh.Name = name
		fresh.Amount = amount
		next = append(next, fresh)
		result = fresh
	}

	if err := s.save(ctx, KeyInventory, next); err != nil {
		return model.Item{}, false, err
	}
	s.items = next
	return result, true, nil
}

// TakeItem removes amount units of name only if at least that many are held.
// The record is deleted when it reaches zero. remaining is the amount left.
func (s *Store) TakeItem(ctx context.Context, name string, amount int) (remaining int, ok bool, err error) {
	if amount <= 0 {
		return 0, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByName(s.items, name)
	if idx < 0 || s.items[idx].Amount < amount {
		return 0, false, nil
	}
	next, remaining := decrement(s.items, idx, amount)
	if err := s.save(ctx, KeyInventory, next); err != nil {
		return 0, false, err
	}
	s.items = next
	return remaining, true, nil
}

// DrainItem removes up to amount units of name, flooring at zero. It reports
// false when no record exists.
func (s *Store) DrainItem(ctx context.Context, name string, amount int) (remaining int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByName(s.items, name)
	if idx < 0 {
		return 0, false, nil
	}
	if amount < 0 {
		amount = 0
	}
	next, remaining := decrement(s.items, idx, amount)
	if err := s.save(ctx, KeyInventory, next); err != nil {
		return 0, false, err
	}
	s.items = next
	return remaining, true, nil
}

// ConsumeItem uses one unit of the record with id.
func (s *Store) ConsumeItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	next, _ := decrement(s.items, idx, 1)
	if err := s.save(ctx, KeyInventory, next); err != nil {
		return false, err
	}
	s.items = next
	return true, nil
}

// RemoveItem deletes the record with id regardless of amount.
func (s *Store) RemoveItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := remove(s.items, id, func(it model.Item) string { return it.ID })
	if !ok {
		return false, nil
	}
	if err := s.save(ctx, KeyInventory, next); err != nil {
		return false, err
	}
	s.items = next
	return true, nil
}

func indexByName(items []model.Item, name string) int {
	for i, it := range items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// decrement returns a copy of items with items[idx] reduced by amount,
// dropping the record when nothing remains.
func decrement(items []model.Item, idx, amount int) ([]model.Item, int) {
	next := snapshot(items)
	remaining := next[idx].Amount - amount
	if remaining > 0 {
		next[idx].Amount = remaining
		return next, remaining
	}
	return append(next[:idx], next[idx+1:]...), 0
}
