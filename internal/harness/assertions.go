package harness

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/gamify/internal/progression"
	"github.com/roach88/gamify/internal/state"
)

// AssertionContext carries what assertions inspect besides the trace.
type AssertionContext struct {
	State         *state.Store
	Notifications []string
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", formatEvent(event))
		}
	}
	return buf.String()
}

// assertEventContains checks that some event with the given name carries a
// payload matching assertion.Data (subset semantics).
func assertEventContains(trace []TraceEvent, assertion Assertion) error {
	want, _ := normalize(assertion.Data).(map[string]any)
	for _, event := range trace {
		if event.Event != assertion.Event {
			continue
		}
		if len(want) == 0 || subsetMismatch(want, event.Data) == "" {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("event %s with data %v", assertion.Event, assertion.Data),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventOrder checks that the events occur in the given relative order.
// Other events may appear in between and names may repeat.
func assertEventOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Events) && event.Event == assertion.Events[next] {
			next++
		}
	}
	if next == len(assertion.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("events in order: %v", assertion.Events),
		Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(assertion.Events), assertion.Events[next]),
		Trace:    trace,
	}
}

// assertEventCount checks that the event occurs exactly Count times.
func assertEventCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Event == assertion.Event {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%s to occur %d times", assertion.Event, assertion.Count),
		Actual:   fmt.Sprintf("occurred %d times", count),
		Trace:    trace,
	}
}

// assertNotified checks that a sent notification contains Message.
func assertNotified(notifications []string, assertion Assertion) error {
	for _, msg := range notifications {
		if strings.Contains(msg, assertion.Message) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertNotified,
		Expected: fmt.Sprintf("a notification containing %q", assertion.Message),
		Actual:   fmt.Sprintf("%d notifications: %q", len(notifications), notifications),
	}
}

// stateTables maps a final_state table name to its rows.
var stateTables = map[string]func(*state.Store) []map[string]any{
	"tasks":        func(st *state.Store) []map[string]any { return rows(st.Tasks()) },
	"logs":         func(st *state.Store) []map[string]any { return rows(st.Logs()) },
	"inventory":    func(st *state.Store) []map[string]any { return rows(st.Items()) },
	"rewards":      func(st *state.Store) []map[string]any { return rows(st.Rewards()) },
	"achievements": func(st *state.Store) []map[string]any { return rows(st.Achievements()) },
	"recurring":    func(st *state.Store) []map[string]any { return rows(st.Recurrings()) },
	"scripts":      func(st *state.Store) []map[string]any { return rows(st.Scripts()) },
	"prestige":     prestigeRows,
	"totals":       totalRows,
}

func prestigeRows(st *state.Store) []map[string]any {
	settings := st.PrestigeSettings()
	tier := progression.PrestigeTier(st.Prestige())
	return rows([]map[string]any{{
		"points":               st.Prestige(),
		"enabled":              settings.Enabled,
		"pointsPerAchievement": settings.PointsPerAchievement,
		"tier":                 tier.Name,
	}})
}

func totalRows(st *state.Store) []map[string]any {
	totals := st.Totals()
	list := make([]map[string]any, 0, len(totals))
	for _, skill := range slices.Sorted(maps.Keys(totals)) {
		list = append(list, map[string]any{"skill": skill, "points": totals[skill]})
	}
	return rows(list)
}

func rows[T any](list []T) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := normalize(v).(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// assertFinalState selects exactly one row matching Where and checks Expect
// against it.
func assertFinalState(st *state.Store, assertion Assertion) error {
	all := stateTables[assertion.Table](st)
	where, _ := normalize(assertion.Where).(map[string]any)

	var matched []map[string]any
	for _, row := range all {
		if len(where) == 0 || subsetMismatch(where, row) == "" {
			matched = append(matched, row)
		}
	}
	if len(matched) != 1 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one %s row where %v", assertion.Table, assertion.Where),
			Actual:   fmt.Sprintf("%d rows matched", len(matched)),
		}
	}

	want, _ := normalize(assertion.Expect).(map[string]any)
	if mismatch := subsetMismatch(want, matched[0]); mismatch != "" {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s row where %v to have %v", assertion.Table, assertion.Where, assertion.Expect),
			Actual:   mismatch,
		}
	}
	return nil
}

// subsetMismatch describes the first way actual fails to contain expected,
// or returns "" when it does. Maps match as subsets at every level; every
// other value must be equal.
func subsetMismatch(expected, actual any) string {
	return mismatchAt("", expected, actual)
}

func mismatchAt(path string, expected, actual any) string {
	want, ok := expected.(map[string]any)
	if !ok {
		if !reflect.DeepEqual(expected, actual) {
			return fmt.Sprintf("%s: expected %v, got %v", label(path), expected, actual)
		}
		return ""
	}
	got, ok := actual.(map[string]any)
	if !ok {
		return fmt.Sprintf("%s: expected an object, got %v", label(path), actual)
	}
	for _, key := range slices.Sorted(maps.Keys(want)) {
		v, present := got[key]
		if !present {
			return fmt.Sprintf("%s: missing", label(join(path, key)))
		}
		if m := mismatchAt(join(path, key), want[key], v); m != "" {
			return m
		}
	}
	return ""
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func label(path string) string {
	if path == "" {
		return "value"
	}
	return path
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertEventContains:
			err = assertEventContains(result.Trace, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, assertion)
		case AssertEventCount:
			err = assertEventCount(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.State == nil {
				err = fmt.Errorf("final_state requires a state store")
			} else {
				err = assertFinalState(actx.State, assertion)
			}
		case AssertNotified:
			var sent []string
			if actx != nil {
				sent = actx.Notifications
			}
			err = assertNotified(sent, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}
	return errs
}
