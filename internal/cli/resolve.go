package cli

import (
	"fmt"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/model"
)

// find returns the record whose ID equals ref or, failing that, the first
// one whose name does.
func find[T any](list []T, ref string, id, name func(T) string) (T, error) {
	for _, v := range list {
		if id(v) == ref {
			return v, nil
		}
	}
	for _, v := range list {
		if name(v) == ref {
			return v, nil
		}
	}
	var zero T
	return zero, WrapExitError(ExitFailure, fmt.Sprintf("no match for %q", ref), gameapi.ErrNotFound)
}

func findTask(s *session, ref string) (model.Task, error) {
	return find(s.api.AllTasks(), ref,
		func(t model.Task) string { return t.ID },
		func(t model.Task) string { return t.Name })
}

func findLog(s *session, ref string) (model.LogEntry, error) {
	return find(s.api.Logs(), ref,
		func(l model.LogEntry) string { return l.ID },
		func(l model.LogEntry) string { return l.Name })
}

func findItem(s *session, ref string) (model.Item, error) {
	return find(s.api.Items(), ref,
		func(i model.Item) string { return i.ID },
		func(i model.Item) string { return i.Name })
}

func findReward(s *session, ref string) (model.Reward, error) {
	return find(s.api.Rewards(), ref,
		func(r model.Reward) string { return r.ID },
		func(r model.Reward) string { return r.Name })
}

func findAchievement(s *session, ref string) (model.Achievement, error) {
	return find(s.api.Achievements(), ref,
		func(a model.Achievement) string { return a.ID },
		func(a model.Achievement) string { return a.Name })
}

func findRecurring(s *session, ref string) (model.Recurring, error) {
	return find(s.api.Recurrings(), ref,
		func(r model.Recurring) string { return r.ID },
		func(r model.Recurring) string { return r.Name })
}

func findScript(s *session, ref string) (model.Script, error) {
	return find(s.api.Scripts(), ref,
		func(sc model.Script) string { return sc.ID },
		func(sc model.Script) string { return sc.Name })
}
