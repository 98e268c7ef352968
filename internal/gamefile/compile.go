package gamefile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gamify/internal/points"
)

//go:embed schema.cue
var schemaSource string

// Reward is a declared reward.
type Reward struct {
	Name        string
	Description string
	Criteria    string
}

// Achievement is a declared criteria-based achievement. A nil Prestige
// takes the settings default.
type Achievement struct {
	Name        string
	Description string
	Criteria    string
	Prestige    *int
}

// Recurring is a declared action template.
type Recurring struct {
	Name        string
	Description string
	Points      string
}

// Script is a declared script with its source resolved.
type Script struct {
	Name        string
	Description string
	Events      []string
	Code        string
}

// Definition is everything a set of CUE files declares, in source order.
type Definition struct {
	Rewards      []Reward
	Achievements []Achievement
	Recurring    []Recurring
	Scripts      []Script
}

// Empty reports whether nothing was declared.
func (d *Definition) Empty() bool {
	return len(d.Rewards) == 0 && len(d.Achievements) == 0 && len(d.Recurring) == 0 && len(d.Scripts) == 0
}

// CompileError is a definition error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}

// compile checks v against the schema and extracts its declarations. v must
// come from the same cue.Context as the schema, which Loader guarantees.
// Script files are resolved relative to dir.
func compile(schema, v cue.Value, dir string) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	game := schema.LookupPath(cue.ParsePath("#Game")).Unify(v)
	if err := game.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}
	err := eachField(game, "reward", func(name string, f cue.Value) error {
		r := Reward{Name: name}
		var err error
		if r.Description, err = optionalString(f, "description"); err != nil {
			return err
		}
		if r.Criteria, err = optionalString(f, "criteria"); err != nil {
			return err
		}
		if err := checkPoints(f, "criteria", r.Criteria, true); err != nil {
			return err
		}
		def.Rewards = append(def.Rewards, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(game, "achievement", func(name string, f cue.Value) error {
		a := Achievement{Name: name}
		var err error
		if a.Description, err = optionalString(f, "description"); err != nil {
			return err
		}
		if a.Criteria, err = optionalString(f, "criteria"); err != nil {
			return err
		}
		if err := checkPoints(f, "criteria", a.Criteria, false); err != nil {
			return err
		}
		if p := f.LookupPath(cue.ParsePath("prestige")); p.Exists() {
			n, err := p.Int64()
			if err != nil {
				return formatCUEError(err)
			}
			prestige := int(n)
			a.Prestige = &prestige
		}
		def.Achievements = append(def.Achievements, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(game, "recurring", func(name string, f cue.Value) error {
		r := Recurring{Name: name}
		var err error
		if r.Description, err = optionalString(f, "description"); err != nil {
			return err
		}
		if r.Points, err = optionalString(f, "points"); err != nil {
			return err
		}
		if err := checkPoints(f, "points", r.Points, false); err != nil {
			return err
		}
		def.Recurring = append(def.Recurring, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(game, "script", func(name string, f cue.Value) error {
		s, err := compileScript(name, f, dir)
		if err != nil {
			return err
		}
		def.Scripts = append(def.Scripts, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

func compileScript(name string, f cue.Value, dir string) (Script, error) {
	s := Script{Name: name}
	var err error
	if s.Description, err = optionalString(f, "description"); err != nil {
		return s, err
	}
	if ev := f.LookupPath(cue.ParsePath("events")); ev.Exists() {
		iter, err := ev.List()
		if err != nil {
			return s, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return s, formatCUEError(err)
			}
			s.Events = append(s.Events, name)
		}
	}

	code, err := optionalString(f, "code")
	if err != nil {
		return s, err
	}
	file, err := optionalString(f, "file")
	if err != nil {
		return s, err
	}
	switch {
	case code != "" && file != "":
		return s, &CompileError{Field: "script." + name, Message: "code and file are mutually exclusive", Pos: f.Pos()}
	case file != "":
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return s, &CompileError{Field: "script." + name + ".file", Message: err.Error(), Pos: f.Pos()}
		}
		code = string(data)
	case code == "":
		return s, &CompileError{Field: "script." + name, Message: "code or file is required", Pos: f.Pos()}
	}
	s.Code = code
	return s, nil
}

func eachField(v cue.Value, section string, fn func(name string, f cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(section))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// checkPoints validates a "skill:value" field with the same rules as user
// input. Blank values pass when allowBlank is set.
func checkPoints(v cue.Value, field, input string, allowBlank bool) error {
	if allowBlank && input == "" {
		return nil
	}
	if _, err := points.Parse(input); err != nil {
		return &CompileError{Field: field, Message: err.Error(), Pos: v.LookupPath(cue.ParsePath(field)).Pos()}
	}
	return nil
}
