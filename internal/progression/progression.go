// Package progression computes levels from accumulated points.
//
// All functions are pure. A Curve starts at level 1 with Base XP required to
// reach level 2; each following requirement is the previous one multiplied by
// Growth and floored.
package progression

import "math"

// Curve describes a level requirement sequence.
type Curve struct {
	Base   int
	Growth float64
}

var (
	// Overall is the player level curve.
	Overall = Curve{Base: 100, Growth: 1.2}

	// Skill is the per-skill level curve.
	Skill = Curve{Base: 50, Growth: 1.15}
)

// Level describes a position on a curve.
type Level struct {
	Level           int `json:"level"`
	CurrentXP       int `json:"currentXP"`
	NextLevelXP     int `json:"nextLevelXP"`
	ProgressPercent int `json:"progressPercent"`
	TotalXP         int `json:"totalXP"`
}

// Next returns the requirement following req.
func (c Curve) Next(req int) int {
	return int(math.Floor(float64(req) * c.Growth))
}

// Requirement returns the XP needed to go from level n to n+1.
func (c Curve) Requirement(n int) int {
	req := c.Base
	for i := 1; i < n; i++ {
		req = c.Next(req)
	}
	return req
}

// At walks the curve with xp. Negative xp counts as zero.
func (c Curve) At(xp int) Level {
	if xp < 0 {
		xp = 0
	}
	level, used, req := 1, 0, c.Base
	for req > 0 && xp >= used+req {
		used += req
		level++
		req = c.Next(req)
	}

	current := xp - used
	percent := 0
	if req > 0 {
		percent = int(math.Round(float64(current) / float64(req) * 100))
	}
	return Level{
		Level:           level,
		CurrentXP:       current,
		NextLevelXP:     req,
		ProgressPercent: percent,
		TotalXP:         xp,
	}
}

// Pool returns the overall XP pool: the sum of every skill total clamped at
// zero, so a negative skill never subtracts from the others.
func Pool(totals map[string]int) int {
	pool := 0
	for _, v := range totals {
		if v > 0 {
			pool += v
		}
	}
	return pool
}

// OverallLevel returns the player level for the given skill totals.
func OverallLevel(totals map[string]int) Level {
	return Overall.At(Pool(totals))
}

// SkillLevel returns the level of one skill total.
func SkillLevel(total int) Level {
	return Skill.At(total)
}

// SkillLevels computes SkillLevel for every skill.
func SkillLevels(totals map[string]int) map[string]Level {
	out := make(map[string]Level, len(totals))
	for skill, v := range totals {
		out[skill] = SkillLevel(v)
	}
	return out
}
