// Package model defines the records owned by the state store.
//
// Every record is a plain value type serialized as JSON with the camelCase
// field names used by the persisted collections (tasks, actions, inventory,
// rewards, achievements, recurrents, scripts, eventHistory). Collections are
// ordered; insertion order is display order.
package model
