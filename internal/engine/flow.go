package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FlowTokenGenerator generates the token that correlates every event of one
// cascade. Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests).
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 flow tokens.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined flow tokens for testing.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
//	gen := NewFixedGenerator("flow-1", "flow-2")
//	gen.Generate() // "flow-1"
//	gen.Generate() // "flow-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token. Panics once all tokens have
// been consumed, which catches tests that start more flows than expected.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// flowState travels in the context of scripts run by a dispatch so nested
// emissions join the same cascade.
type flowState struct {
	token string
	depth int
	quota *QuotaEnforcer
}

type flowKey struct{}

func withFlow(ctx context.Context, fs flowState) context.Context {
	return context.WithValue(ctx, flowKey{}, fs)
}

func flowFrom(ctx context.Context) (flowState, bool) {
	fs, ok := ctx.Value(flowKey{}).(flowState)
	return fs, ok
}

// FlowFromContext returns the flow token of the cascade ctx belongs to.
func FlowFromContext(ctx context.Context) (string, bool) {
	fs, ok := flowFrom(ctx)
	return fs.token, ok
}

// DepthFromContext returns how deeply nested the next emission from ctx
// would be. Zero outside any dispatch.
func DepthFromContext(ctx context.Context) int {
	fs, _ := flowFrom(ctx)
	return fs.depth
}
