package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a game, a sequence of operations
// and assertions over the resulting event history and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Game is an optional CUE game definition applied before setup.
	// Relative paths resolve against the scenario file's directory.
	Game string `yaml:"game,omitempty"`

	// Scripts are stored before setup, in order.
	Scripts []ScriptDef `yaml:"scripts,omitempty"`

	// Setup establishes initial state. Every setup step must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the operation sequence under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final history and state.
	Assertions []Assertion `yaml:"assertions"`

	// Engine limits. Zero keeps the engine default.
	MaxDepth     int `yaml:"max_depth,omitempty"`
	MaxSteps     int `yaml:"max_steps,omitempty"`
	HistoryLimit int `yaml:"history_limit,omitempty"`
}

// ScriptDef is an inline script.
type ScriptDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Events      []string `yaml:"events,omitempty"`
	Code        string   `yaml:"code"`
}

// Step invokes one harness operation.
type Step struct {
	// Op is the operation name, e.g. "complete_task". See OpNames.
	Op string `yaml:"op"`

	// Args are the operation arguments. Records are referenced by name.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect validates the outcome. Nil requires the operation to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// OK is the expected boolean outcome for operations that report one,
	// such as complete_task or unlock.
	OK *bool `yaml:"ok,omitempty"`

	// Error is a substring the operation's error must contain. When set,
	// the step must fail.
	Error string `yaml:"error,omitempty"`

	// Result is a subset match against the operation's result.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the history or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event names the event for event_count and event_contains.
	Event string `yaml:"event,omitempty"`

	// Data is a subset match against an event payload (event_contains).
	Data map[string]any `yaml:"data,omitempty"`

	// Events is the expected relative order (event_order).
	Events []string `yaml:"events,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count int `yaml:"count,omitempty"`

	// Table names the state collection (final_state).
	Table string `yaml:"table,omitempty"`

	// Where selects exactly one row by field values (final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect is a subset match against the selected row (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Message is a substring of a sent notification (notified).
	Message string `yaml:"message,omitempty"`
}

// Assertion types.
const (
	AssertEventContains = "event_contains"
	AssertEventOrder    = "event_order"
	AssertEventCount    = "event_count"
	AssertFinalState    = "final_state"
	AssertNotified      = "notified"
)

// LoadScenario reads and validates a scenario file. The game path is
// resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario decodes a scenario from YAML. Unknown fields are rejected so
// typos like "assertion:" fail loudly.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Game != "" && !filepath.IsAbs(scenario.Game) && baseDir != "" {
		scenario.Game = filepath.Join(baseDir, scenario.Game)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.MaxDepth < 0 || s.MaxSteps < 0 || s.HistoryLimit < 0 {
		return fmt.Errorf("engine limits must be non-negative")
	}

	if s.Game != "" {
		if _, err := os.Stat(s.Game); os.IsNotExist(err) {
			return fmt.Errorf("game file not found: %s", s.Game)
		}
	}

	for i, sc := range s.Scripts {
		if sc.Name == "" {
			return fmt.Errorf("scripts[%d]: name is required", i)
		}
		if sc.Code == "" {
			return fmt.Errorf("scripts[%d]: code is required", i)
		}
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is only allowed in flow steps", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	if _, ok := ops[step.Op]; !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_contains", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if _, ok := stateTables[a.Table]; !ok {
			return fmt.Errorf("assertions[%d]: unknown table %q", index, a.Table)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertNotified:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for notified", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
