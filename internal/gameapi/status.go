package gameapi

import (
	"maps"
	"slices"

	"github.com/roach88/gamify/internal/progression"
)

// SkillStatus is one skill's total and level.
type SkillStatus struct {
	Skill string            `json:"skill"`
	Level progression.Level `json:"level"`
}

// Status summarizes progression for display.
type Status struct {
	Overall  progression.Level `json:"overall"`
	Skills   []SkillStatus     `json:"skills"`
	Prestige int               `json:"prestige"`
	Tier     progression.Tier  `json:"tier"`
	Earned   int               `json:"earned"`
	Total    int               `json:"total"`
}

// Status computes levels from the current log totals. Skills are sorted by
// name.
func (a *API) Status() Status {
	totals := a.store.Totals()
	levels := progression.SkillLevels(totals)

	st := Status{
		Overall:  progression.OverallLevel(totals),
		Skills:   make([]SkillStatus, 0, len(levels)),
		Prestige: a.store.Prestige(),
		Tier:     a.PrestigeLevel(),
	}
	for _, skill := range slices.Sorted(maps.Keys(levels)) {
		st.Skills = append(st.Skills, SkillStatus{Skill: skill, Level: levels[skill]})
	}
	for _, ach := range a.store.Achievements() {
		st.Total++
		if ach.Earned {
			st.Earned++
		}
	}
	return st
}
