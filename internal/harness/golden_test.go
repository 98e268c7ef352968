package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestGoldenFiles_HaveScenarios(t *testing.T) {
	goldens, err := filepath.Glob(filepath.Join("testdata", "golden", "*.golden"))
	require.NoError(t, err)
	for _, g := range goldens {
		name := strings.TrimSuffix(filepath.Base(g), ".golden")
		_, err := os.Stat(filepath.Join("testdata", "scenarios", name+".yaml"))
		assert.NoError(t, err, "golden file %s has no scenario", g)
	}
}

func TestFormatTrace(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Flow: "flow-1", Depth: 0, Event: "onTaskAdd", Data: map[string]any{
			"task": map[string]any{"name": "Clean", "id": "id-1"},
		}},
		{Seq: 2, Flow: "flow-1", Depth: 1, Event: "custom", Data: map[string]any{
			"b":     1.5,
			"a":     float64(3),
			"flag":  true,
			"list":  []any{1.0, 2.0},
			"bag":   map[string]any{"k": "v"},
			"empty": nil,
			"s":     "say \"hi\"",
		}},
		{Seq: 3, Flow: "flow-2", Depth: 0, Event: "bare"},
	}

	want := `1 flow-1 0 onTaskAdd task.name="Clean"
2 flow-1 1 custom a=3 b=1.5 bag={1} empty=null flag=true list=[2] s="say \"hi\""
3 flow-2 0 bare
`
	assert.Equal(t, want, string(FormatTrace(trace)))
}

func TestFormatTrace_Empty(t *testing.T) {
	assert.Empty(t, FormatTrace(nil))
}
