package gameapi

import (
	"context"

	"github.com/roach88/gamify/internal/model"
)

// Trigger emits a custom event exactly as the game does internally.
func (a *API) Trigger(ctx context.Context, name string, data map[string]any) error {
	return a.emit(ctx, name, data)
}

// EventHistory returns the recorded events, oldest first.
func (a *API) EventHistory() []model.Event {
	return a.store.History()
}
