package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownSpecies is returned when a creature references a species the pokedex does not know
var ErrUnknownSpecies = errors.New("unknown species")

const (
	stabMultiplier = 1.25
	// Defenders wait roughly two seconds between moves
	defenderDelayMs = 2000
)

// Pokedex is the read-only static game data: species and moves
type Pokedex struct {
	species map[SpeciesID]*Species
	moves   map[MoveID]*Move
}

// NewPokedex indexes species and moves by id
func NewPokedex(species []*Species, moves []*Move) *Pokedex {
	d := &Pokedex{
		species: make(map[SpeciesID]*Species, len(species)),
		moves:   make(map[MoveID]*Move, len(moves)),
	}
	for _, s := range species {
		d.species[s.ID] = s
	}
	for _, m := range moves {
		d.moves[m.ID] = m
	}
	return d
}

// Species returns the static data for id
func (d *Pokedex) Species(id SpeciesID) (*Species, error) {
	s, ok := d.species[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpecies, id)
	}
	return s, nil
}

// Move returns the static data for a move, or nil
func (d *Pokedex) Move(id MoveID) *Move {
	return d.moves[id]
}

// Name returns the species name, or an empty string for unknown ids
func (d *Pokedex) Name(id SpeciesID) string {
	if s, ok := d.species[id]; ok {
		return s.Name
	}
	return ""
}

// FamilyOf returns the evolution root of id (id itself when unknown)
func (d *Pokedex) FamilyOf(id SpeciesID) SpeciesID {
	if s, ok := d.species[id]; ok && s.FamilyID != 0 {
		return s.FamilyID
	}
	return id
}

// EvolutionCost returns the candy needed to evolve id once
func (d *Pokedex) EvolutionCost(id SpeciesID) int {
	if s, ok := d.species[id]; ok {
		return s.CandyToEvolve
	}
	return 0
}

// HasNextEvolution reports whether id can evolve
func (d *Pokedex) HasNextEvolution(id SpeciesID) bool {
	s, ok := d.species[id]
	return ok && s.HasNextEvolution()
}

// NextEvolutionIDs returns the direct evolutions of id
func (d *Pokedex) NextEvolutionIDs(id SpeciesID) []SpeciesID {
	if s, ok := d.species[id]; ok {
		return s.NextEvolutionIDs
	}
	return nil
}

// NextEvolutionsAll returns every species reachable from id by evolving, breadth first
func (d *Pokedex) NextEvolutionsAll(id SpeciesID) []SpeciesID {
	var all []SpeciesID
	seen := map[SpeciesID]bool{id: true}
	queue := []SpeciesID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range d.NextEvolutionIDs(cur) {
			if seen[next] {
				continue
			}
			seen[next] = true
			all = append(all, next)
			queue = append(queue, next)
		}
	}
	return all
}

// FamilyNames returns the names of id and of every species it can evolve into
func (d *Pokedex) FamilyNames(id SpeciesID) []string {
	names := []string{d.Name(id)}
	for _, next := range d.NextEvolutionsAll(id) {
		names = append(names, d.Name(next))
	}
	return names
}

// NormalizedCP returns cp as a fraction of the species max cp at the creature level, in [0, 1]
func (d *Pokedex) NormalizedCP(c *Creature) float64 {
	s, ok := d.species[c.SpeciesID]
	if !ok || s.MaxCP <= 0 {
		return 0
	}
	maxCP := MaxCPAtLevel(s.MaxCP, c.Level)
	if maxCP <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, float64(c.CP)/maxCP))
}

// Moveset computes the DPS metrics of a fast/charged pair for a species.
// Perfection is relative to every combination of the species move pools.
func (d *Pokedex) Moveset(id SpeciesID, fast, charged MoveID) Moveset {
	ms := Moveset{Fast: fast, Charged: charged}
	s, ok := d.species[id]
	if !ok {
		return ms
	}

	attack, defense, ok := d.cycleDPS(s, fast, charged)
	if !ok {
		return ms
	}
	ms.DPSAttack = attack
	ms.DPSDefense = defense
	ms.DPS = (attack + defense) / 2
	ms.HasDPS = true

	var attacks, defenses []float64
	for _, f := range s.FastMoves {
		for _, c := range s.ChargedMoves {
			if a, df, ok := d.cycleDPS(s, f, c); ok {
				attacks = append(attacks, a)
				defenses = append(defenses, df)
			}
		}
	}
	if len(attacks) == 0 {
		return ms
	}
	ms.AttackPerfection = perfection(attack, attacks)
	ms.DefensePerfection = perfection(defense, defenses)
	ms.HasPerfection = true
	return ms
}

// cycleDPS returns attacker and defender damage per second of n fast moves
// followed by one charged move, n being the fast moves needed to fill the charge.
func (d *Pokedex) cycleDPS(s *Species, fastID, chargedID MoveID) (float64, float64, bool) {
	fast, charged := d.moves[fastID], d.moves[chargedID]
	if fast == nil || charged == nil {
		return 0, 0, false
	}

	n := 1
	if fast.Energy > 0 && charged.Energy < 0 {
		n = int(math.Ceil(float64(-charged.Energy) / float64(fast.Energy)))
	}

	damage := float64(n)*fast.Power*stab(s, fast) + charged.Power*stab(s, charged)
	attackMs := n*fast.DurationMs + charged.DurationMs
	defenseMs := n*(fast.DurationMs+defenderDelayMs) + charged.DurationMs + defenderDelayMs
	if attackMs <= 0 {
		return 0, 0, false
	}
	return damage * 1000 / float64(attackMs), damage * 1000 / float64(defenseMs), true
}

func stab(s *Species, m *Move) float64 {
	if s.HasType(m.Type) {
		return stabMultiplier
	}
	return 1
}

func perfection(v float64, all []float64) float64 {
	lo, hi := all[0], all[0]
	for _, x := range all[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi-lo < 1e-9 {
		return 1
	}
	return math.Min(1, math.Max(0, (v-lo)/(hi-lo)))
}

// SpeciesIDs returns every known species id in ascending order
func (d *Pokedex) SpeciesIDs() []SpeciesID {
	ids := make([]SpeciesID, 0, len(d.species))
	for id := range d.species {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
