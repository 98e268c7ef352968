package engine

import "sync"

// QuotaEnforcer counts script dispatches in one flow and enforces a limit.
//
// Cycle detection catches re-entrant patterns (A → B → A). The quota catches
// long linear cascades where every step is distinct (A → B → C → ... → Z).
// Together with the depth limit they guarantee every flow terminates.
//
// Once exceeded, the enforcer stays exhausted: every later Check in the flow
// fails too.
type QuotaEnforcer struct {
	mu       sync.Mutex
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check counts one step and returns a QUOTA_EXCEEDED *DispatchError when the
// limit has been passed.
func (q *QuotaEnforcer) Check(flow string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.current++
	if q.current > q.maxSteps {
		return NewQuotaError(flow, q.current, q.maxSteps)
	}
	return nil
}

// Exhausted reports whether the limit has already been passed.
func (q *QuotaEnforcer) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.current > q.maxSteps
}

// Current returns the step count.
func (q *QuotaEnforcer) Current() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.current
}

// MaxSteps returns the limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}
