package optimizer

import (
	"fmt"
	"log/slog"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// Optimizer decides, once per tick, what to release, evolve and power up
type Optimizer struct {
	cfg    *models.Config
	dex    *models.Pokedex
	logger *slog.Logger
}

// New creates an optimizer. A nil logger falls back to slog.Default().
func New(cfg *models.Config, dex *models.Pokedex, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{cfg: cfg, dex: dex, logger: logger}
}

// Plan is the outcome of one optimization pass
type Plan struct {
	Transfers  []models.Creature
	Evolutions []Evolution // best members first, then experience fodder
	Upgrades   []UpgradeRequest

	StardustBefore int
	StardustAfter  int
}

// ShouldRun reports whether the storage is full enough to be worth a pass
func (o *Optimizer) ShouldRun(inv *models.Inventory) bool {
	return inv.SpaceLeft() <= o.cfg.MinSlotLeft
}

// Optimize runs the full pipeline: group, rank, plan per family, then fit
// every power-up into the stardust budget.
func (o *Optimizer) Optimize(inv *models.Inventory) (*Plan, error) {
	families := GroupFamilies(inv.Creatures, o.dex)

	var best, xp []Evolution
	var upgrades []UpgradeRequest
	plan := &Plan{StardustBefore: inv.Stardust}

	for _, id := range familyOrder(families) {
		in := planInput{
			candy:       inv.Candy(id),
			playerLevel: inv.PlayerLevel,
			maxStorage:  inv.MaxStorage,
		}

		var fp FamilyPlan
		var err error
		if branches, ok := o.cfg.MultiBranch[id]; ok {
			fp, err = o.optimizeMultiBranch(id, families[id], branches, in)
		} else {
			fp, err = o.optimizeFamily(id, families[id], in)
		}
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", o.dex.Name(id), err)
		}

		plan.Transfers = append(plan.Transfers, fp.Transfers...)
		best = append(best, fp.Evolutions...)
		xp = append(xp, fp.XPEvolutions...)
		upgrades = append(upgrades, fp.Upgrades...)
	}
	plan.Evolutions = append(best, xp...)

	o.logger.Info("Pokemon selected for a power up", "count", len(upgrades))
	o.logger.Info("Stardust available", "stardust", inv.Stardust)

	accepted, left, err := AllocateStardust(upgrades, inv.Stardust)
	if err != nil {
		return nil, err
	}
	plan.Upgrades = accepted
	plan.StardustAfter = left

	return plan, nil
}

// optimizeFamily ranks and plans an ordinary single-branch family
func (o *Optimizer) optimizeFamily(familyID models.SpeciesID, family []models.Creature, in planInput) (FamilyPlan, error) {
	sel := o.Rank(familyID, family)
	return o.PlanFamily(familyID, family, sel, in)
}
