package optimizer

import (
	"fmt"
	"sort"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// Evolution is one planned evolve action. Successor is the creature as it is
// expected to look afterwards.
type Evolution struct {
	Creature  models.Creature
	Successor models.Creature
	ForXP     bool // Fodder evolved for experience rather than kept
}

// UpgradeRequest asks for Steps half-level power-ups of a creature
type UpgradeRequest struct {
	Creature models.Creature
	Steps    int
}

// TargetLevel is the level reached after every step
func (r UpgradeRequest) TargetLevel() float64 {
	return r.Creature.Level + float64(r.Steps)*0.5
}

// FamilyPlan is the planner output for one family
type FamilyPlan struct {
	Transfers    []models.Creature
	Evolutions   []Evolution // best members, in commit order
	XPEvolutions []Evolution
	Upgrades     []UpgradeRequest
	Balance      int // Candy left once every planned action is done
}

// planInput is the account state a family plan depends on
type planInput struct {
	candy       int
	playerLevel int
	maxStorage  int
}

// PlanFamily decides transfers, evolutions and power-ups for one family.
// The candy balance is threaded through each stage and never goes negative.
func (o *Optimizer) PlanFamily(familyID models.SpeciesID, family []models.Creature, sel Selection, in planInput) (FamilyPlan, error) {
	crap := crapOf(family, sel.Keep)

	// Transferring or evolving a crap member both yield one candy
	balance := in.candy + len(crap)

	evolutions, balance, err := o.evolveBest(sel.Evolve, balance)
	if err != nil {
		return FamilyPlan{}, err
	}

	upgrades, balance, err := o.upgradeBest(sel.Upgrade, balance, in.playerLevel)
	if err != nil {
		return FamilyPlan{}, err
	}

	xp, transfers, balance, err := o.reserveForXP(familyID, crap, balance, in.maxStorage)
	if err != nil {
		return FamilyPlan{}, err
	}

	return FamilyPlan{
		Transfers:    transfers,
		Evolutions:   evolutions,
		XPEvolutions: xp,
		Upgrades:     upgrades,
		Balance:      balance,
	}, nil
}

// crapOf returns the members that are neither kept nor protected, most
// desirable first. Deployed and favorite creatures are never touched.
func crapOf(family, keep []models.Creature) []models.Creature {
	kept := make(map[uint64]bool, len(keep))
	for _, c := range keep {
		kept[c.UniqueID] = true
	}

	var crap []models.Creature
	for _, c := range family {
		if kept[c.UniqueID] || c.InFort || c.IsFavorite {
			continue
		}
		crap = append(crap, c)
	}
	sortByPotential(crap)
	return crap
}

func sortByPotential(cs []models.Creature) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].IV*cs[i].NCP > cs[j].IV*cs[j].NCP
	})
}

// evolveBest commits evolutions in candidate order while candy lasts.
// Each successor joins the queue so whole chains can be planned.
func (o *Optimizer) evolveBest(candidates []models.Creature, balance int) ([]Evolution, int, error) {
	queue := append([]models.Creature(nil), candidates...)

	var evolutions []Evolution
	for i := 0; i < len(queue); i++ {
		c := queue[i]
		if !c.HasNextEvolution() {
			continue
		}
		if balance-c.EvolutionCost < 0 {
			break
		}

		next, err := o.dex.Species(c.NextEvolutionIDs[0])
		if err != nil {
			return nil, 0, fmt.Errorf("evolving %s: %w", c.Name, err)
		}
		balance = balance - c.EvolutionCost + 1

		successor := models.Evolved(c, next)
		evolutions = append(evolutions, Evolution{Creature: c, Successor: successor})
		queue = append(queue, successor)
	}
	return evolutions, balance, nil
}

// chainCost is the candy still needed to fully evolve c
func (o *Optimizer) chainCost(c models.Creature) int {
	total := 0
	id := c.SpeciesID
	for seen := 0; o.dex.HasNextEvolution(id) && seen < 8; seen++ {
		total += o.dex.EvolutionCost(id)
		id = o.dex.NextEvolutionIDs(id)[0]
	}
	return total
}

// upgradeBest plans power-ups of fully evolved candidates. Each step is priced
// by the level it reaches and the last target stays below the level cap.
func (o *Optimizer) upgradeBest(candidates []models.Creature, balance, playerLevel int) ([]UpgradeRequest, int, error) {
	limit := min(float64(playerLevel)+1.5, 41)

	var requests []UpgradeRequest
	for _, c := range candidates {
		if c.HasNextEvolution() {
			continue
		}
		o.logger.Debug("Checking for power-up", "pokemon", c.Name, "cp", c.CP, "level", c.Level)

		reserved := o.chainCost(c)
		steps, spent := 0, 0
		for target := c.Level + 0.5; target < limit; target += 0.5 {
			cost, err := models.UpgradeCostFor(target)
			if err != nil {
				return nil, 0, fmt.Errorf("power-up of %s: %w", c.Name, err)
			}
			if balance-spent < reserved+cost.Candy {
				break
			}
			spent += cost.Candy
			steps++
		}

		if steps > 0 {
			balance -= spent
			requests = append(requests, UpgradeRequest{Creature: c, Steps: steps})
			o.logger.Debug("Enough candy for power-ups", "pokemon", c.Name, "steps", steps)
		} else {
			o.logger.Debug("Not enough candy", "pokemon", c.Name)
		}
	}
	return requests, balance, nil
}

// reserveForXP keeps part of the crap back for a batch evolution when the
// family is configured as experience fodder. Reservations smaller than 1% of
// the storage are not worth the candy and are dropped entirely.
func (o *Optimizer) reserveForXP(familyID models.SpeciesID, crap []models.Creature, balance, maxStorage int) ([]Evolution, []models.Creature, int, error) {
	if !o.cfg.EvolveForXP || !o.cfg.UseForXP(o.dex.Name(familyID)) {
		return nil, crap, balance, nil
	}

	baseCost := o.dex.EvolutionCost(familyID)
	keepForEvo := 0
	if balance > 0 && baseCost != 0 {
		keepForEvo = (balance - 1) / baseCost
	}

	reserved := make(map[uint64]bool)
	var picked []models.Creature
	for _, c := range crap {
		if len(picked) >= keepForEvo {
			break
		}
		if c.HasNextEvolution() && c.EvolutionCost == baseCost {
			picked = append(picked, c)
			reserved[c.UniqueID] = true
		}
	}

	if len(picked) < xpBatchThreshold(maxStorage) {
		return nil, crap, balance, nil
	}

	var evolutions []Evolution
	var transfers []models.Creature
	for _, c := range picked {
		next, err := o.dex.Species(c.NextEvolutionIDs[0])
		if err != nil {
			return nil, nil, 0, fmt.Errorf("evolving %s for xp: %w", c.Name, err)
		}
		evolutions = append(evolutions, Evolution{Creature: c, Successor: models.Evolved(c, next), ForXP: true})
		balance -= baseCost
	}
	for _, c := range crap {
		if !reserved[c.UniqueID] {
			transfers = append(transfers, c)
		}
	}
	return evolutions, transfers, balance, nil
}

// xpBatchThreshold is 1% of the storage, rounded up
func xpBatchThreshold(maxStorage int) int {
	if maxStorage <= 0 {
		return 0
	}
	return (maxStorage + 99) / 100
}
