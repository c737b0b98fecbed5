package optimizer

import (
	"sort"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// optimizeMultiBranch handles a family whose chain splits into several
// mutually exclusive final forms.
//
// Final forms are grouped by species. Once every branch has been seen, each
// group is ranked on its own and the lowest of the group winners sets the bar
// the whole family has to clear. Until then the unevolved members are all
// treated as worth evolving. Each final-form group is also optimized on its
// own to release its weakest members.
func (o *Optimizer) optimizeMultiBranch(familyID models.SpeciesID, family []models.Creature, branches int, in planInput) (FamilyPlan, error) {
	var others []models.Creature
	groups := make(map[models.SpeciesID][]models.Creature)
	for _, c := range family {
		if c.HasNextEvolution() {
			others = append(others, c)
		} else {
			groups[c.SpeciesID] = append(groups[c.SpeciesID], c)
		}
	}
	order := familyOrder(groups)

	var plan FamilyPlan
	var err error
	switch {
	case !o.cfg.Evolve:
		plan, err = o.optimizeFamily(familyID, others, in)
	case len(groups) < branches:
		o.logger.Debug("Waiting for every branch before ranking",
			"family", o.dex.Name(familyID), "seen", len(groups), "branches", branches)
		plan, err = o.PlanFamily(familyID, nil, Selection{Evolve: others}, in)
		sort.SliceStable(plan.Evolutions, func(i, j int) bool {
			a, b := plan.Evolutions[i].Creature, plan.Evolutions[j].Creature
			return a.IV*a.NCP > b.IV*b.NCP
		})
	default:
		sel := o.rankAcrossBranches(familyID, family, groups, order)
		plan, err = o.PlanFamily(familyID, others, sel, in)
	}
	if err != nil {
		return FamilyPlan{}, err
	}

	busy := make(map[uint64]bool)
	for _, u := range plan.Upgrades {
		busy[u.Creature.UniqueID] = true
	}
	for _, id := range order {
		gp, err := o.optimizeFamily(id, groups[id], in)
		if err != nil {
			return FamilyPlan{}, err
		}
		for _, c := range gp.Transfers {
			if !busy[c.UniqueID] {
				plan.Transfers = append(plan.Transfers, c)
			}
		}
	}
	return plan, nil
}

// rankAcrossBranches ranks the whole family against the weakest of the
// per-branch winners of each criterion.
func (o *Optimizer) rankAcrossBranches(familyID models.SpeciesID, family []models.Creature, groups map[models.SpeciesID][]models.Creature, order []models.SpeciesID) Selection {
	names := o.dex.FamilyNames(familyID)

	var sel Selection
	for i := range o.cfg.Keep {
		k := &o.cfg.Keep[i]
		if !k.AppliesTo(names) {
			continue
		}

		var top []models.Creature
		for _, id := range order {
			top = append(top, topRank(groups[id], k)...)
		}
		sorted := sortedFamily(top, k)
		if len(sorted) == 0 {
			// No final form passes the thresholds, so there is no bar to clear
			continue
		}
		worst := keyOf(&sorted[len(sorted)-1], k.Sort)
		sel.add(betterRank(family, k, worst), k)
	}
	sel.dedupe()
	return sel
}
