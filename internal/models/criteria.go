package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownField is returned for an attribute path that is not rankable
var ErrUnknownField = errors.New("unknown creature attribute")

// Field is a rankable or threshold-able creature attribute
type Field int

const (
	FieldCP Field = iota
	FieldIV
	FieldNCP
	FieldLevel
	FieldIVAttack
	FieldIVDefense
	FieldIVStamina
	FieldDPS
	FieldDPSAttack
	FieldDPSDefense
	FieldAttackPerfection
	FieldDefensePerfection
)

// fieldPaths maps configuration attribute paths to fields.
// Moveset metrics are reachable both flat and through "moveset.".
var fieldPaths = map[string]Field{
	"cp":                         FieldCP,
	"iv":                         FieldIV,
	"ncp":                        FieldNCP,
	"level":                      FieldLevel,
	"iv_attack":                  FieldIVAttack,
	"iv_defense":                 FieldIVDefense,
	"iv_stamina":                 FieldIVStamina,
	"dps":                        FieldDPS,
	"dps_attack":                 FieldDPSAttack,
	"dps_defense":                FieldDPSDefense,
	"moveset.dps":                FieldDPS,
	"moveset.dps_attack":         FieldDPSAttack,
	"moveset.dps_defense":        FieldDPSDefense,
	"moveset.attack_perfection":  FieldAttackPerfection,
	"moveset.defense_perfection": FieldDefensePerfection,
}

// ParseField resolves a dot-separated attribute path
func ParseField(path string) (Field, error) {
	f, ok := fieldPaths[strings.ToLower(strings.TrimSpace(path))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	return f, nil
}

// String returns the canonical attribute path
func (f Field) String() string {
	switch f {
	case FieldCP:
		return "cp"
	case FieldIV:
		return "iv"
	case FieldNCP:
		return "ncp"
	case FieldLevel:
		return "level"
	case FieldIVAttack:
		return "iv_attack"
	case FieldIVDefense:
		return "iv_defense"
	case FieldIVStamina:
		return "iv_stamina"
	case FieldDPS:
		return "moveset.dps"
	case FieldDPSAttack:
		return "moveset.dps_attack"
	case FieldDPSDefense:
		return "moveset.dps_defense"
	case FieldAttackPerfection:
		return "moveset.attack_perfection"
	case FieldDefensePerfection:
		return "moveset.defense_perfection"
	default:
		return "unknown"
	}
}

// Value extracts the attribute from c. ok is false when the value is missing,
// which happens for moveset metrics of creatures with unknown moves.
func (f Field) Value(c *Creature) (float64, bool) {
	switch f {
	case FieldCP:
		return float64(c.CP), true
	case FieldIV:
		return c.IV, true
	case FieldNCP:
		return c.NCP, true
	case FieldLevel:
		return c.Level, true
	case FieldIVAttack:
		return float64(c.IVAttack), true
	case FieldIVDefense:
		return float64(c.IVDefense), true
	case FieldIVStamina:
		return float64(c.IVStamina), true
	case FieldDPS:
		return c.Moveset.DPS, c.Moveset.HasDPS
	case FieldDPSAttack:
		return c.Moveset.DPSAttack, c.Moveset.HasDPS
	case FieldDPSDefense:
		return c.Moveset.DPSDefense, c.Moveset.HasDPS
	case FieldAttackPerfection:
		return c.Moveset.AttackPerfection, c.Moveset.HasPerfection
	case FieldDefensePerfection:
		return c.Moveset.DefensePerfection, c.Moveset.HasPerfection
	}
	return 0, false
}

// Threshold is a minimum value an attribute must reach
type Threshold struct {
	Field Field
	Min   float64
}

// KeepCriterion selects the best members of a family under one ranking
type KeepCriterion struct {
	Sort    []Field
	Top     int
	Min     []Threshold
	Names   []string // Empty means every family
	Evolve  bool
	Upgrade bool
}

// MatchesMin reports whether c reaches every threshold. A missing attribute fails.
func (k *KeepCriterion) MatchesMin(c *Creature) bool {
	for _, t := range k.Min {
		v, ok := t.Field.Value(c)
		if !ok || v < t.Min {
			return false
		}
	}
	return true
}

// AppliesTo reports whether the criterion is relevant for a family with the given names
func (k *KeepCriterion) AppliesTo(familyNames []string) bool {
	if len(k.Names) == 0 {
		return true
	}
	for _, n := range k.Names {
		if slices.Contains(familyNames, n) {
			return true
		}
	}
	return false
}
