// Package state owns every game collection.
//
// A Store holds tasks, the action log, inventory, rewards, achievements,
// recurring templates, prestige, scripts and the bounded event history. All
// other components read and write through its accessor methods; nothing else
// keeps a reference to the underlying slices.
//
// Persistence follows a load/save contract: Open loads each collection key
// with a default, and every mutation saves the full updated collection under
// its key before the in-memory copy is replaced. A failed save leaves the
// in-memory state unchanged.
//
// Readers receive copies, so a caller iterating a snapshot is unaffected by
// nested mutations made during a cascading event.
package state
