package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs(t *testing.T) {
	ids := NewSequenceIDs("task")
	assert.Equal(t, "task-1", ids.NewID())
	assert.Equal(t, "task-2", ids.NewID())

	ids.Reset()
	assert.Equal(t, "task-1", ids.NewID())
}

func TestSequenceIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewSequenceIDs("").NewID())
}

func TestFlowSequence(t *testing.T) {
	gen := NewFlowSequence("")
	assert.Equal(t, "flow-1", gen.Generate())
	assert.Equal(t, "flow-2", gen.Generate())
}
