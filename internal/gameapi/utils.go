package gameapi

import (
	"time"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/script"
)

// Now returns the API clock's current time.
func (a *API) Now() time.Time {
	return a.clock.Now()
}

// RandomInt returns a uniform integer in [min, max]. Bounds given in the
// wrong order are swapped.
func (a *API) RandomInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + a.rand.IntN(max-min+1)
}

// Streak counts completed tasks whose completion falls within the last
// days days.
func (a *API) Streak(tasks []model.Task, days int) int {
	cutoff := script.DaysAgo(a.clock.Now(), days)
	n := 0
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil && t.CompletedAt.After(cutoff) {
			n++
		}
	}
	return n
}
