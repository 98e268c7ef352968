// Package points parses "skill:value" strings and sums skill totals over the
// action log.
//
// Parse is the strict validator for user-supplied points. ParseCriteria is
// the lenient reader for achievement and reward criteria, where malformed
// text never matches and is not an error.
package points

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gamify/internal/model"
)

// MaxMagnitude bounds a single validated point value.
const MaxMagnitude = 10000

// MaxCriteriaValue bounds the magnitude of a criteria value.
const MaxCriteriaValue = 1 << 31

var (
	skillPattern   = regexp.MustCompile(`^[\p{L}\p{N}_\s]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// ValidationError reports why a points string was rejected.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid points %q: %s", e.Input, e.Reason)
}

// NormalizeSkill trims a skill name and puts it in Unicode NFC form so that
// "ö" typed as one rune or as o + combining diaeresis totals together.
func NormalizeSkill(skill string) string {
	return norm.NFC.String(strings.TrimSpace(skill))
}

// Parse validates a comma-separated "skill:value" list.
//
// Rules: input must be non-blank and hold at least one pair; every pair needs
// a colon, a skill of letters, digits, underscores or spaces, and an integer
// value within [-MaxMagnitude, MaxMagnitude]. A later duplicate skill
// overwrites an earlier one.
func Parse(input string) (model.Points, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ValidationError{Input: input, Reason: "points cannot be empty"}
	}

	pairs := splitPairs(input)
	if len(pairs) == 0 {
		return nil, &ValidationError{Input: input, Reason: "at least one skill:value pair is required"}
	}

	out := make(model.Points, len(pairs))
	for _, pair := range pairs {
		skill, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, &ValidationError{Input: input, Reason: fmt.Sprintf("pair %q must look like skill:value", pair)}
		}
		skill = NormalizeSkill(skill)
		value = strings.TrimSpace(value)

		if skill == "" {
			return nil, &ValidationError{Input: input, Reason: "skill name cannot be empty"}
		}
		if !skillPattern.MatchString(skill) {
			return nil, &ValidationError{Input: input, Reason: fmt.Sprintf("skill %q may only contain letters, digits, underscores and spaces", skill)}
		}
		if value == "" {
			return nil, &ValidationError{Input: input, Reason: fmt.Sprintf("value for %q cannot be empty", skill)}
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, &ValidationError{Input: input, Reason: fmt.Sprintf("value %q for %q is not a whole number", value, skill)}
		}
		if n > MaxMagnitude || n < -MaxMagnitude {
			return nil, &ValidationError{Input: input, Reason: fmt.Sprintf("value %d for %q must be between %d and %d", n, skill, -MaxMagnitude, MaxMagnitude)}
		}
		out[skill] = n
	}
	return out, nil
}

// Requirement is one "skill:value" criteria pair.
type Requirement struct {
	Skill string
	Value float64
}

// ParseCriteria reads a criteria string leniently. ok is false when the
// string is empty or any pair is malformed (wrong colon count, empty skill,
// a value that is not a plain decimal number, or one beyond
// MaxCriteriaValue).
func ParseCriteria(criteria string) (reqs []Requirement, ok bool) {
	pairs := splitPairs(criteria)
	if len(pairs) == 0 {
		return nil, false
	}
	reqs = make([]Requirement, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, false
		}
		skill := NormalizeSkill(parts[0])
		value := strings.TrimSpace(parts[1])
		if skill == "" || value == "" {
			return nil, false
		}
		if !decimalPattern.MatchString(value) {
			return nil, false
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(n) || math.Abs(n) > MaxCriteriaValue {
			return nil, false
		}
		reqs = append(reqs, Requirement{Skill: skill, Value: n})
	}
	return reqs, true
}

// Cost returns the whole points a requirement spends. Fractions round up,
// matching the integer totals Satisfied compares against.
func (r Requirement) Cost() int {
	return int(math.Ceil(r.Value))
}

// Satisfied reports whether every requirement is met (logical AND).
func Satisfied(reqs []Requirement, lookup func(skill string) int) bool {
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if float64(lookup(r.Skill)) < r.Value {
			return false
		}
	}
	return true
}

// Cumulative sums every log entry's contribution to one skill.
func Cumulative(logs []model.LogEntry, skill string) int {
	skill = NormalizeSkill(skill)
	sum := 0
	for _, l := range logs {
		sum += l.Points[skill]
	}
	return sum
}

// Totals sums every skill over the log.
func Totals(logs []model.LogEntry) map[string]int {
	out := make(map[string]int)
	for _, l := range logs {
		for skill, v := range l.Points {
			out[skill] += v
		}
	}
	return out
}

// Format renders points as "a:1, b:-2" with skills sorted by name.
func Format(p model.Points) string {
	skills := make([]string, 0, len(p))
	for s := range p {
		skills = append(skills, s)
	}
	sort.Strings(skills)

	parts := make([]string, len(skills))
	for i, s := range skills {
		parts[i] = s + ":" + strconv.Itoa(p[s])
	}
	return strings.Join(parts, ", ")
}

func splitPairs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
