package model

import "time"

// Points maps a skill name to a signed point contribution.
type Points map[string]int

// Clone returns an independent copy of p. A nil map clones to an empty one.
func (p Points) Clone() Points {
	out := make(Points, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Negate returns a copy of p with every value sign-flipped.
func (p Points) Negate() Points {
	out := make(Points, len(p))
	for k, v := range p {
		out[k] = -v
	}
	return out
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Task is a to-do item that grants points, items and script runs on completion.
type Task struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Points          Points         `json:"points"`
	Date            time.Time      `json:"date"`
	Completed       bool           `json:"completed"`
	Status          TaskStatus     `json:"status"`
	Priority        string         `json:"priority"`
	Category        string         `json:"category"`
	DueDate         string         `json:"dueDate"`
	ItemRewards     map[string]int `json:"itemRewards"`
	ExpReward       int            `json:"expReward"`
	SelectedScripts []string       `json:"selectedScripts"`
	CreatedAt       time.Time      `json:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt"`
}

// LogEntry is one performed action. Its points feed every cumulative total.
type LogEntry struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Points      Points         `json:"points"`
	Date        time.Time      `json:"date"`
	RewardID    string         `json:"rewardId,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Item is an inventory record. At most one record exists per Name and
// Amount is always positive.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
	RewardID    string    `json:"rewardId,omitempty"`
}

// Reward can be bought once every criteria pair is met.
type Reward struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Criteria    string         `json:"criteria"`
	CreatedAt   time.Time      `json:"createdAt"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Achievement unlocks once, irreversibly, when its criteria are met.
// A zero PrestigePoints means the settings default applies.
type Achievement struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Criteria       string     `json:"criteria"`
	PrestigePoints int        `json:"prestigePoints"`
	Earned         bool       `json:"earned"`
	EarnedDate     *time.Time `json:"earnedDate"`
}

// PrestigeSettings controls prestige awards for unlocked achievements.
type PrestigeSettings struct {
	Enabled              bool `json:"enabled"`
	PointsPerAchievement int  `json:"pointsPerAchievement"`
}

// DefaultPointsPerAchievement is awarded when an achievement carries no
// prestige value of its own.
const DefaultPointsPerAchievement = 10

// DefaultPrestigeSettings returns the settings used before any are saved.
func DefaultPrestigeSettings() PrestigeSettings {
	return PrestigeSettings{Enabled: true, PointsPerAchievement: DefaultPointsPerAchievement}
}

// Recurring is a reusable action template.
type Recurring struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      Points `json:"points"`
	Applied     int    `json:"applied"`
}

// Script is user-authored automation source.
//
// Events is the subscription allow-list. An empty list leaves matching to the
// engine's fallback matcher.
type Script struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Events      []string  `json:"events,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Event is one recorded occurrence in the bounded event history. Seq is a
// logical clock value that orders events independently of wall time.
type Event struct {
	ID        string         `json:"id"`
	Seq       int64          `json:"seq"`
	Name      string         `json:"name"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	Flow      string         `json:"flow,omitempty"`
	Depth     int            `json:"depth,omitempty"`
}
