// Package converter turns plans and reports into JSON transfer objects
package converter

// CreatureDTO is a creature as shown to operators and API clients.
// Ids exceed the float64 range so they travel as strings.
type CreatureDTO struct {
	ID        uint64  `json:"id,string"`
	Species   string  `json:"species"`
	SpeciesID int     `json:"species_id"`
	CP        int     `json:"cp"`
	IV        float64 `json:"iv"`
	NCP       float64 `json:"ncp"`
	Level     float64 `json:"level"`
	Favorite  bool    `json:"favorite,omitempty"`
}

// EvolutionDTO is one planned evolution
type EvolutionDTO struct {
	Creature CreatureDTO `json:"creature"`
	Into     string      `json:"into"`
	ForXP    bool        `json:"for_xp"`
}

// UpgradeDTO is one accepted power-up request with its price
type UpgradeDTO struct {
	Creature  CreatureDTO `json:"creature"`
	Steps     int         `json:"steps"`
	FromLevel float64     `json:"from_level"`
	ToLevel   float64     `json:"to_level"`
	Candy     int         `json:"candy"`
	Stardust  int         `json:"stardust"`
}

// PlanDTO is the serialized optimizer plan
type PlanDTO struct {
	Transfers      []CreatureDTO  `json:"transfers"`
	Evolutions     []EvolutionDTO `json:"evolutions"`
	Upgrades       []UpgradeDTO   `json:"upgrades"`
	StardustBefore int            `json:"stardust_before"`
	StardustAfter  int            `json:"stardust_after"`
}

// ReportDTO is the serialized outcome of applying a plan
type ReportDTO struct {
	Transferred   int            `json:"transferred"`
	Upgraded      int            `json:"upgraded"`
	Evolved       int            `json:"evolved"`
	XP            int            `json:"xp"`
	StardustSpent int            `json:"stardust_spent"`
	CandyDelta    map[string]int `json:"candy_delta"`
	LuckyEggUsed  bool           `json:"lucky_egg_used"`
	EvolveSkipped bool           `json:"evolve_skipped"`
	Failed        int            `json:"failed"`
}

// ErrorDTO is the body of every API error
type ErrorDTO struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine readable code and a message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
