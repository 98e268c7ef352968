package engine

import (
	"slices"
	"strings"

	"github.com/roach88/gamify/internal/model"
)

// Matcher decides whether a script should run for an event.
type Matcher interface {
	Match(s model.Script, event string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(s model.Script, event string) bool

// Match implements Matcher.
func (f MatcherFunc) Match(s model.Script, event string) bool {
	return f(s, event)
}

// Wildcard in a script's Events list subscribes it to every event.
const Wildcard = "*"

// SubscriptionMatcher matches scripts by their declared Events list. Scripts
// that declare nothing are handed to Fallback; a nil Fallback matches nothing.
type SubscriptionMatcher struct {
	Fallback Matcher
}

// Match implements Matcher.
func (m SubscriptionMatcher) Match(s model.Script, event string) bool {
	if len(s.Events) > 0 {
		return slices.Contains(s.Events, event) || slices.Contains(s.Events, Wildcard)
	}
	if m.Fallback == nil {
		return false
	}
	return m.Fallback.Match(s, event)
}

// DefaultMatcher returns explicit subscriptions with the source-text
// heuristic as fallback for scripts that declare none.
func DefaultMatcher() Matcher {
	return SubscriptionMatcher{Fallback: LegacyMatcher{}}
}

// genericAccess are the substrings of scripts that inspect whichever event
// they were run for.
var genericAccess = []string{"eventData", "context.event"}

// legacyKeywords maps event names to source substrings that imply interest.
var legacyKeywords = map[string][]string{
	model.EventTaskComplete:      {"task.completed"},
	model.EventTaskAdd:           {"task.name"},
	model.EventInventoryAdd:      {"inventory", "item"},
	model.EventInventoryRemove:   {"inventory"},
	model.EventAchievementUnlock: {"achievement"},
	model.EventRewardUse:         {"reward"},
	model.EventPrestigeChange:    {"prestige"},
	model.EventLogAdd:            {"log"},
}

// LegacyMatcher matches by scanning script source, in order of precedence:
// the event name itself, generic event access, then the per-event keyword
// table. Incidental substrings can cause false positives.
type LegacyMatcher struct{}

// Match implements Matcher.
func (LegacyMatcher) Match(s model.Script, event string) bool {
	if event != "" && strings.Contains(s.Code, event) {
		return true
	}
	for _, sub := range genericAccess {
		if strings.Contains(s.Code, sub) {
			return true
		}
	}
	for _, kw := range legacyKeywords[event] {
		if strings.Contains(s.Code, kw) {
			return true
		}
	}
	return false
}
