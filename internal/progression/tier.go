package progression

// Tier is a named prestige rank.
type Tier struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Min   int    `json:"min"`
}

// Tiers lists prestige ranks in ascending order of Min.
var Tiers = []Tier{
	{Level: 1, Name: "Acemi", Icon: "🌱", Min: 0},
	{Level: 2, Name: "Deneyimli", Icon: "🌿", Min: 50},
	{Level: 3, Name: "Usta", Icon: "⭐", Min: 150},
	{Level: 4, Name: "Uzman", Icon: "💎", Min: 300},
	{Level: 5, Name: "Efsane", Icon: "👑", Min: 500},
	{Level: 6, Name: "Tanrısal", Icon: "🔥", Min: 750},
}

// PrestigeTier returns the highest tier whose threshold points reach.
// Points below zero map to the first tier.
func PrestigeTier(points int) Tier {
	tier := Tiers[0]
	for _, t := range Tiers[1:] {
		if points >= t.Min {
			tier = t
		}
	}
	return tier
}
