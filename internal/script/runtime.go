package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/gamify/internal/model"
)

// Context is the per-invocation data handed to a script.
type Context map[string]any

// Event returns the "event" entry, or "" when absent.
func (c Context) Event() string {
	s, _ := c["event"].(string)
	return s
}

// Task returns the "task" entry, or nil when absent.
func (c Context) Task() any {
	return c["task"]
}

// NewEventContext builds {event, eventData, ...data}. Payload keys are
// spread last and win over event and eventData.
func NewEventContext(name string, data map[string]any) Context {
	c := Context{"event": name, "eventData": data}
	for k, v := range data {
		c[k] = v
	}
	return c
}

// Host executes script source. Implementations must not keep caps or sc
// beyond the call.
type Host interface {
	Run(ctx context.Context, source string, caps Capabilities, sc Context) (any, error)
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, source string, caps Capabilities, sc Context) (any, error)

// Run implements Host.
func (f HostFunc) Run(ctx context.Context, source string, caps Capabilities, sc Context) (any, error) {
	return f(ctx, source, caps, sc)
}

// ExecError wraps a failure raised while running a script.
type ExecError struct {
	ScriptID   string
	ScriptName string
	Event      string
	Err        error
}

func (e *ExecError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("script %q (%s) failed on %s: %v", e.ScriptName, e.ScriptID, e.Event, e.Err)
	}
	return fmt.Sprintf("script %q (%s) failed: %v", e.ScriptName, e.ScriptID, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsExecError reports whether err is or wraps an *ExecError.
func IsExecError(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}

// Runtime executes stored scripts through a Host.
type Runtime struct {
	host   Host
	logger *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime over host.
func NewRuntime(host Host, opts ...RuntimeOption) *Runtime {
	r := &Runtime{host: host, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs s with caps and sc. Any host failure, including a panic,
// is returned as *ExecError.
func (r *Runtime) Execute(ctx context.Context, s model.Script, caps Capabilities, sc Context) (result any, err error) {
	if sc == nil {
		sc = Context{}
	}
	event := sc.Event()
	r.logger.Debug("executing script", "script", s.Name, "id", s.ID, "event", event)

	defer func() {
		if p := recover(); p != nil {
			err = &ExecError{ScriptID: s.ID, ScriptName: s.Name, Event: event, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	result, err = r.host.Run(ctx, s.Code, caps, sc)
	if err != nil {
		return nil, &ExecError{ScriptID: s.ID, ScriptName: s.Name, Event: event, Err: err}
	}
	r.logger.Debug("script finished", "script", s.Name, "event", event)
	return result, nil
}
