package harness

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// FormatTrace renders a trace in the golden text format, one event per
// line.
func FormatTrace(trace []TraceEvent) []byte {
	var buf strings.Builder
	for _, event := range trace {
		buf.WriteString(formatEvent(event))
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

func formatEvent(event TraceEvent) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d %s %d %s", event.Seq, event.Flow, event.Depth, event.Event)
	for _, key := range slices.Sorted(maps.Keys(event.Data)) {
		buf.WriteByte(' ')
		buf.WriteString(formatField(key, event.Data[key]))
	}
	return buf.String()
}

func formatField(key string, v any) string {
	switch v := v.(type) {
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return key + ".name=" + strconv.Quote(name)
		}
		return fmt.Sprintf("%s={%d}", key, len(v))
	case []any:
		return fmt.Sprintf("%s=[%d]", key, len(v))
	default:
		return key + "=" + formatScalar(v)
	}
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, FormatTrace(result.Trace))
}
