package model

// Event names emitted by the game API.
const (
	EventTaskAdd           = "onTaskAdd"
	EventTaskRemove        = "onTaskRemove"
	EventTaskComplete      = "onTaskComplete"
	EventInventoryAdd      = "onInventoryAdd"
	EventInventoryRemove   = "onInventoryRemove"
	EventAchievementUnlock = "onAchievementUnlock"
	EventRewardUse         = "onRewardUse"
	EventRewardAdd         = "onRewardAdd"
	EventLogAdd            = "onLogAdd"
	EventPrestigeChange    = "onPrestigeChange"
	EventNotification      = "onNotification"
)

// KnownEvents lists every event the game API emits, in a stable order.
var KnownEvents = []string{
	EventTaskAdd,
	EventTaskRemove,
	EventTaskComplete,
	EventInventoryAdd,
	EventInventoryRemove,
	EventAchievementUnlock,
	EventRewardUse,
	EventRewardAdd,
	EventLogAdd,
	EventPrestigeChange,
	EventNotification,
}
