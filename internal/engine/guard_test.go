package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleDetector_RecordAndRelease(t *testing.T) {
	cd := NewCycleDetector()
	assert.False(t, cd.WouldCycle("flow-1", "s1", "ping"))

	cd.Record("flow-1", "s1", "ping")
	assert.True(t, cd.WouldCycle("flow-1", "s1", "ping"))
	assert.False(t, cd.WouldCycle("flow-1", "s1", "pong"), "different event")
	assert.False(t, cd.WouldCycle("flow-1", "s2", "ping"), "different script")
	assert.False(t, cd.WouldCycle("flow-2", "s1", "ping"), "different flow")

	cd.Release("flow-1", "s1", "ping")
	assert.False(t, cd.WouldCycle("flow-1", "s1", "ping"))
	assert.Equal(t, 0, cd.FlowHistorySize("flow-1"))
}

func TestCycleDetector_NestedRecordsNeedMatchingReleases(t *testing.T) {
	cd := NewCycleDetector()
	cd.Record("f", "s1", "ping")
	cd.Record("f", "s1", "ping")

	cd.Release("f", "s1", "ping")
	assert.True(t, cd.WouldCycle("f", "s1", "ping"))
	cd.Release("f", "s1", "ping")
	assert.False(t, cd.WouldCycle("f", "s1", "ping"))
}

func TestCycleDetector_ReleaseUnknownIsNoop(t *testing.T) {
	cd := NewCycleDetector()
	cd.Release("nope", "s1", "ping")
	assert.Equal(t, 0, cd.HistorySize())
}

func TestCycleDetector_Clear(t *testing.T) {
	cd := NewCycleDetector()
	cd.Record("f1", "s1", "a")
	cd.Record("f2", "s1", "a")
	require.Equal(t, 2, cd.HistorySize())

	cd.Clear("f1")
	assert.Equal(t, 1, cd.HistorySize())
	assert.False(t, cd.WouldCycle("f1", "s1", "a"))
	assert.True(t, cd.WouldCycle("f2", "s1", "a"))
}

func TestCycleDetector_Concurrent(t *testing.T) {
	cd := NewCycleDetector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flow := uuid.NewString()
			cd.Record(flow, "s", "e")
			assert.True(t, cd.WouldCycle(flow, "s", "e"))
			cd.Release(flow, "s", "e")
		}()
	}
	wg.Wait()
}

func TestQuotaEnforcer(t *testing.T) {
	q := NewQuotaEnforcer(2)
	require.NoError(t, q.Check("f"))
	require.NoError(t, q.Check("f"))
	assert.False(t, q.Exhausted())

	err := q.Check("f")
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.True(t, q.Exhausted())
	assert.Equal(t, 3, q.Current())
	assert.Equal(t, 2, q.MaxSteps())

	assert.True(t, IsQuotaError(q.Check("f")), "stays exhausted")
}

func TestDispatchError_Messages(t *testing.T) {
	assert.Equal(t,
		"CYCLE_DETECTED: script is already handling ping in this flow (flow=f, script=s1)",
		NewCycleError("f", "s1", "ping").Error())
	assert.Equal(t,
		"QUOTA_EXCEEDED: flow exceeded max steps (4 > 3) (flow=f)",
		NewQuotaError("f", 4, 3).Error())
	assert.Equal(t,
		"DEPTH_EXCEEDED: event nested too deeply (3 > 2)",
		NewDepthError("", "x", 3, 2).Error())

	assert.False(t, IsCycleError(NewQuotaError("f", 1, 0)))
	assert.True(t, IsDepthError(NewDepthError("f", "x", 3, 2)))
}

func TestClock(t *testing.T) {
	c := NewClockAt(10)
	assert.Equal(t, int64(10), c.Current())
	assert.Equal(t, int64(11), c.Next())
	assert.Equal(t, int64(12), c.Next())
	assert.Equal(t, int64(12), c.Current())
	assert.Equal(t, int64(1), NewClock().Next())
}

func TestFlowGenerators(t *testing.T) {
	token := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	fixed := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", fixed.Generate())
	assert.Equal(t, "b", fixed.Generate())
	assert.Panics(t, func() { fixed.Generate() })
}
