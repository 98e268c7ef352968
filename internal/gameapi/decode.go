package gameapi

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// Script-supplied records arrive as loosely typed maps. These readers take
// what they can and fall back to zero values.

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// maxExactInt is the largest magnitude a float64 holds as an exact integer.
const maxExactInt = 1 << 53

// intValue reads a whole number. Fractions, NaN, infinities and floats
// beyond maxExactInt are rejected.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > maxExactInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func intField(data map[string]any, key string) int {
	n, _ := intValue(data[key])
	return n
}

func countsField(data map[string]any, key string) map[string]int {
	out := map[string]int{}
	switch m := data[key].(type) {
	case map[string]int:
		maps.Copy(out, m)
	case model.Points:
		maps.Copy(out, m)
	case map[string]any:
		for k, v := range m {
			if n, ok := intValue(v); ok {
				out[k] = n
			}
		}
	}
	return out
}

// pointsField reads a points map, or a "skill:value" string parsed
// strictly. Skill names are normalized either way.
func pointsField(data map[string]any, key string) (model.Points, error) {
	if s, ok := data[key].(string); ok {
		if strings.TrimSpace(s) == "" {
			return model.Points{}, nil
		}
		return points.Parse(s)
	}
	out := model.Points{}
	switch m := data[key].(type) {
	case map[string]any:
		for k, v := range m {
			n, ok := intValue(v)
			if !ok || n > points.MaxMagnitude || n < -points.MaxMagnitude {
				return nil, &points.ValidationError{
					Input:  fmt.Sprint(m),
					Reason: fmt.Sprintf("value %v for %q must be a whole number between %d and %d", v, k, -points.MaxMagnitude, points.MaxMagnitude),
				}
			}
			out[points.NormalizeSkill(k)] += n
		}
	default:
		for k, v := range countsField(data, key) {
			out[points.NormalizeSkill(k)] += v
		}
	}
	return out, nil
}

func stringsField(data map[string]any, key string) []string {
	out := []string{}
	switch list := data[key].(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// extras returns the entries of data not named in known, or nil.
func extras(data map[string]any, known ...string) map[string]any {
	var out map[string]any
	for k, v := range data {
		if slices.Contains(known, k) {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}
