package engine

import "sync"

// CycleDetector tracks which (script, event) dispatches are currently on the
// stack of each flow.
//
// A cycle is a script being dispatched for an event while an earlier dispatch
// of the same script for the same event has not yet returned:
//
//	onInventoryAdd → "bonus" adds an item → onInventoryAdd → "bonus" again ← CYCLE
//
// Unlike a plain "fired once" set, entries are released when the dispatch
// returns, so the same script may react to the same event many times in one
// flow as long as the calls are siblings rather than nested.
type CycleDetector struct {
	mu      sync.Mutex
	history map[string]map[string]int // map[flow]map[scriptID:event]active
}

// NewCycleDetector creates a new cycle detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{
		history: make(map[string]map[string]int),
	}
}

func cycleKey(scriptID, event string) string {
	return scriptID + ":" + event
}

// WouldCycle reports whether dispatching scriptID for event in this flow
// would re-enter a dispatch that is still running.
func (c *CycleDetector) WouldCycle(flow, scriptID, event string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.history[flow][cycleKey(scriptID, event)] > 0
}

// Record marks a dispatch as active. Call it right after WouldCycle
// returns false and pair it with Release.
func (c *CycleDetector) Record(flow, scriptID, event string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.history[flow] == nil {
		c.history[flow] = make(map[string]int)
	}
	c.history[flow][cycleKey(scriptID, event)]++
}

// Release marks a dispatch as finished.
func (c *CycleDetector) Release(flow, scriptID, event string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.history[flow]
	if active == nil {
		return
	}
	key := cycleKey(scriptID, event)
	if active[key] <= 1 {
		delete(active, key)
		return
	}
	active[key]--
}

// Clear removes all history for a flow.
func (c *CycleDetector) Clear(flow string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.history, flow)
}

// HistorySize returns the number of flows with tracked history.
func (c *CycleDetector) HistorySize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.history)
}

// FlowHistorySize returns the number of active (script, event) pairs in a flow.
func (c *CycleDetector) FlowHistorySize(flow string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.history[flow])
}
