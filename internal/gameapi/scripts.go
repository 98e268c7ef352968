package gameapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/script"
)

// Scripts returns every stored script.
func (a *API) Scripts() []model.Script {
	return a.store.Scripts()
}

// Script looks up a script by id.
func (a *API) Script(id string) (model.Script, bool) {
	return a.store.Script(id)
}

// ExecuteScript runs script id once with sc. ok is false when no such
// script exists. Script errors are returned, not swallowed.
func (a *API) ExecuteScript(ctx context.Context, id string, sc script.Context) (result any, ok bool, err error) {
	s, found := a.store.Script(id)
	if !found {
		return nil, false, nil
	}
	result, err = a.runtime.Execute(ctx, s, a, sc)
	return result, true, err
}

// ScriptInput is a user-authored script. Events is the subscription list;
// leave it empty to rely on source-text matching.
type ScriptInput struct {
	Name        string
	Description string
	Code        string
	Events      []string
}

func validateScript(in ScriptInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "script name cannot be empty"}
	}
	if strings.TrimSpace(in.Code) == "" {
		return &ValidationError{Field: "code", Message: "script code cannot be empty"}
	}
	for _, ev := range in.Events {
		if strings.TrimSpace(ev) == "" {
			return &ValidationError{Field: "events", Message: "event names cannot be empty"}
		}
	}
	return nil
}

// AddScript validates and stores a new script.
func (a *API) AddScript(ctx context.Context, in ScriptInput) (model.Script, error) {
	if err := validateScript(in); err != nil {
		return model.Script{}, err
	}
	now := a.clock.Now()
	s := model.Script{
		ID:          a.ids.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Code:        in.Code,
		Events:      append([]string(nil), in.Events...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.AddScript(ctx, s); err != nil {
		return model.Script{}, err
	}
	a.logger.Info("script added", "script", s.Name, "id", s.ID)
	return s, nil
}

// UpdateScript replaces the definition of script id and bumps UpdatedAt.
func (a *API) UpdateScript(ctx context.Context, id string, in ScriptInput) (model.Script, error) {
	s, ok := a.store.Script(id)
	if !ok {
		return model.Script{}, fmt.Errorf("script %s: %w", id, ErrNotFound)
	}
	if err := validateScript(in); err != nil {
		return model.Script{}, err
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	s.Code = in.Code
	s.Events = append([]string(nil), in.Events...)
	s.UpdatedAt = a.clock.Now()
	if _, err := a.store.ReplaceScript(ctx, s); err != nil {
		return model.Script{}, err
	}
	return s, nil
}

// SaveScript creates the script named in.Name or updates it in place.
// created reports which happened.
func (a *API) SaveScript(ctx context.Context, in ScriptInput) (s model.Script, created bool, err error) {
	if existing, ok := a.store.ScriptByName(strings.TrimSpace(in.Name)); ok {
		s, err = a.UpdateScript(ctx, existing.ID, in)
		return s, false, err
	}
	s, err = a.AddScript(ctx, in)
	return s, err == nil, err
}

// DeleteScript removes script id. Tasks that select it will log a warning
// on completion.
func (a *API) DeleteScript(ctx context.Context, id string) (bool, error) {
	return a.store.RemoveScript(ctx, id)
}

// TestTask is the synthetic task handed to scripts by TestScript.
func TestTask() model.Task {
	return model.Task{
		ID:        "test-task",
		Name:      "Test Task",
		Points:    model.Points{"test": 10},
		Completed: true,
		Status:    model.TaskCompleted,
	}
}

// TestResult is the outcome of a manual test run.
type TestResult struct {
	ScriptID   string `json:"scriptId"`
	ScriptName string `json:"scriptName"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the run finished without error.
func (r TestResult) OK() bool {
	return r.Error == ""
}

// TestScript runs script id once against TestTask with event "test".
// Script failures are reported in the result; the error return is for a
// missing script only.
func (a *API) TestScript(ctx context.Context, id string) (TestResult, error) {
	s, ok := a.store.Script(id)
	if !ok {
		return TestResult{}, fmt.Errorf("script %s: %w", id, ErrNotFound)
	}
	res := TestResult{ScriptID: s.ID, ScriptName: s.Name}
	out, err := a.runtime.Execute(ctx, s, a, script.Context{"task": TestTask(), "event": "test"})
	if err != nil {
		a.logger.Error("script test failed", "script", s.Name, "error", err)
		res.Error = err.Error()
		return res, nil
	}
	res.Result = out
	return res, nil
}
