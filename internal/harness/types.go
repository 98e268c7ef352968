package harness

// TraceEvent is one recorded event with its payload normalized to JSON
// values: maps, slices, strings, float64, bool and nil.
type TraceEvent struct {
	Seq   int64          `json:"seq"`
	Event string         `json:"event"`
	Flow  string         `json:"flow"`
	Depth int            `json:"depth"`
	Data  map[string]any `json:"data,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace is the event history in recording order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// Notifications are the user-facing messages sent during the run.
	Notifications []string `json:"notifications,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
