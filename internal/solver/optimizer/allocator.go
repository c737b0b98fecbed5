package optimizer

import (
	"fmt"
	"sort"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// AllocateStardust trims power-up requests to the stardust budget. Requests are
// served strongest first; the first one that cannot be paid in full gets the
// steps it can afford and ends the allocation. It returns the accepted requests
// and the stardust left.
func AllocateStardust(requests []UpgradeRequest, budget int) ([]UpgradeRequest, int, error) {
	sorted := append([]UpgradeRequest(nil), requests...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Creature.CP > sorted[j].Creature.CP
	})

	var accepted []UpgradeRequest
	for _, r := range sorted {
		if r.Steps <= 0 {
			continue
		}

		done := 0
		for i := 0; i < r.Steps; i++ {
			cost, err := models.UpgradeCostFor(r.Creature.Level + float64(i+1)*0.5)
			if err != nil {
				return nil, 0, fmt.Errorf("power-up of %s: %w", r.Creature.Name, err)
			}
			if budget < cost.Stardust {
				break
			}
			budget -= cost.Stardust
			done++
		}

		if done == r.Steps {
			accepted = append(accepted, r)
			continue
		}
		if done > 0 {
			accepted = append(accepted, UpgradeRequest{Creature: r.Creature, Steps: done})
		}
		break
	}
	return accepted, budget, nil
}

// StardustCost is the total stardust a request consumes
func StardustCost(r UpgradeRequest) (int, error) {
	total := 0
	for i := 1; i <= r.Steps; i++ {
		cost, err := models.UpgradeCostFor(r.Creature.Level + float64(i)*0.5)
		if err != nil {
			return 0, err
		}
		total += cost.Stardust
	}
	return total, nil
}

// CandyCost is the total candy a request consumes
func CandyCost(r UpgradeRequest) (int, error) {
	total := 0
	for i := 1; i <= r.Steps; i++ {
		cost, err := models.UpgradeCostFor(r.Creature.Level + float64(i)*0.5)
		if err != nil {
			return 0, err
		}
		total += cost.Candy
	}
	return total, nil
}
