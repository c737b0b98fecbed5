package models

import "slices"

// SpeciesID identifies a pokedex entry. Family roots are species ids too.
type SpeciesID int

// MoveID identifies a fast or charged move
type MoveID int

// Species is the static pokedex data for one species
type Species struct {
	ID               SpeciesID
	Name             string
	FamilyID         SpeciesID // First member of the evolution chain
	Types            []string
	MaxCP            float64 // CP of a perfect-IV specimen at level 40
	CandyToEvolve    int
	NextEvolutionIDs []SpeciesID
	FastMoves        []MoveID
	ChargedMoves     []MoveID
}

// HasNextEvolution reports whether the species can evolve further
func (s *Species) HasNextEvolution() bool {
	return len(s.NextEvolutionIDs) > 0
}

// HasType reports whether t is one of the species types (used for STAB)
func (s *Species) HasType(t string) bool {
	return slices.Contains(s.Types, t)
}

// Move is the static data of a fast or charged move.
// Energy is positive for fast moves (gain) and negative for charged moves (cost).
type Move struct {
	ID         MoveID
	Name       string
	Type       string
	Power      float64
	DurationMs int
	Energy     int
}

// Moveset holds the moves of a creature and the metrics derived from them.
// The metrics are only meaningful when the corresponding Has flag is set.
type Moveset struct {
	Fast    MoveID
	Charged MoveID

	DPS        float64
	DPSAttack  float64
	DPSDefense float64
	HasDPS     bool

	AttackPerfection  float64
	DefensePerfection float64
	HasPerfection     bool
}

// Creature is one owned individual
type Creature struct {
	UniqueID  uint64
	SpeciesID SpeciesID
	FamilyID  SpeciesID
	Name      string

	CP        int
	IVAttack  int
	IVDefense int
	IVStamina int
	IV        float64 // (attack + defense + stamina) / 45
	NCP       float64 // cp as a fraction of the species max cp at the current level
	Level     float64 // half-integer steps, 1.0 to 40.5

	CPMultiplier float64
	Moveset      Moveset

	InFort     bool
	IsFavorite bool

	EvolutionCost    int
	NextEvolutionIDs []SpeciesID
}

// HasNextEvolution reports whether the creature can still evolve
func (c *Creature) HasNextEvolution() bool {
	return len(c.NextEvolutionIDs) > 0
}

// Evolved returns the creature as it would look after evolving into next.
// Identity attributes are kept; species-bound data comes from next. The
// original value is left untouched.
func Evolved(c Creature, next *Species) Creature {
	e := c
	e.SpeciesID = next.ID
	e.FamilyID = next.FamilyID
	e.Name = next.Name
	e.EvolutionCost = next.CandyToEvolve
	e.NextEvolutionIDs = slices.Clone(next.NextEvolutionIDs)
	return e
}

// ComputeIV returns the normalized IV score in [0, 1]
func ComputeIV(attack, defense, stamina int) float64 {
	return float64(attack+defense+stamina) / 45.0
}
