package testutil

// FlowSequence generates "flow-1", "flow-2", ... so every top-level emission
// in a scenario gets a distinct, predictable flow token.
//
// Implements engine.FlowTokenGenerator.
type FlowSequence struct {
	ids *SequenceIDs
}

// NewFlowSequence creates a flow token generator. An empty prefix becomes
// "flow".
func NewFlowSequence(prefix string) *FlowSequence {
	if prefix == "" {
		prefix = "flow"
	}
	return &FlowSequence{ids: NewSequenceIDs(prefix)}
}

// Generate returns the next flow token.
func (g *FlowSequence) Generate() string {
	return g.ids.NewID()
}
