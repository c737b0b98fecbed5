package optimizer

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/napolitain/bag-optimizer/internal/loader"
	"github.com/napolitain/bag-optimizer/internal/models"
)

// chainDex is a small three-stage family with a cheap first evolution
func chainDex() *models.Pokedex {
	return models.NewPokedex([]*models.Species{
		{ID: 1, Name: "Alpha", FamilyID: 1, MaxCP: 500, CandyToEvolve: 3, NextEvolutionIDs: []models.SpeciesID{2}},
		{ID: 2, Name: "Beta", FamilyID: 1, MaxCP: 1000, CandyToEvolve: 50, NextEvolutionIDs: []models.SpeciesID{3}},
		{ID: 3, Name: "Gamma", FamilyID: 1, MaxCP: 2000},
		{ID: 10, Name: "Solo", FamilyID: 10, MaxCP: 1500},
	}, nil)
}

func dataDex(tb testing.TB) *models.Pokedex {
	tb.Helper()
	dex, err := loader.LoadPokedex("../../../data")
	if err != nil {
		tb.Fatalf("Failed to load pokedex: %v", err)
	}
	return dex
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOptimizer(dex *models.Pokedex, configure func(*models.Config)) *Optimizer {
	cfg := models.DefaultConfig()
	if configure != nil {
		configure(cfg)
	}
	return New(cfg, dex, quietLogger())
}

// member builds a creature of a species with ncp derived from cp for predictable ranking
func member(dex *models.Pokedex, uid uint64, species models.SpeciesID, cp int, iv, level float64) models.Creature {
	s, err := dex.Species(species)
	if err != nil {
		panic(err)
	}
	return models.Creature{
		UniqueID:         uid,
		SpeciesID:        s.ID,
		FamilyID:         s.FamilyID,
		Name:             s.Name,
		CP:               cp,
		IV:               iv,
		NCP:              float64(cp) / 1000,
		Level:            level,
		EvolutionCost:    s.CandyToEvolve,
		NextEvolutionIDs: slices.Clone(s.NextEvolutionIDs),
	}
}

func criterion(top int, fields ...models.Field) models.KeepCriterion {
	return models.KeepCriterion{Top: top, Sort: fields}
}

func ids(cs []models.Creature) []uint64 {
	out := make([]uint64, len(cs))
	for i, c := range cs {
		out[i] = c.UniqueID
	}
	slices.Sort(out)
	return out
}

func evolutionIDs(es []Evolution) []uint64 {
	out := make([]uint64, len(es))
	for i, e := range es {
		out[i] = e.Creature.UniqueID
	}
	return out
}

func assertIDs(t *testing.T, what string, got []models.Creature, want ...uint64) {
	t.Helper()
	slices.Sort(want)
	if g := ids(got); !slices.Equal(g, want) {
		t.Errorf("%s = %v, want %v", what, g, want)
	}
}
