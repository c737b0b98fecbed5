package converter

import (
	"fmt"

	"github.com/napolitain/bag-optimizer/internal/applier"
	"github.com/napolitain/bag-optimizer/internal/models"
	"github.com/napolitain/bag-optimizer/internal/solver/optimizer"
)

// CreatureToDTO converts a creature
func CreatureToDTO(c models.Creature) CreatureDTO {
	return CreatureDTO{
		ID:        c.UniqueID,
		Species:   c.Name,
		SpeciesID: int(c.SpeciesID),
		CP:        c.CP,
		IV:        c.IV,
		NCP:       c.NCP,
		Level:     c.Level,
		Favorite:  c.IsFavorite,
	}
}

// UpgradeToDTO converts a power-up request and prices it from the cost table
func UpgradeToDTO(u optimizer.UpgradeRequest) (UpgradeDTO, error) {
	candy, err := optimizer.CandyCost(u)
	if err != nil {
		return UpgradeDTO{}, err
	}
	dust, err := optimizer.StardustCost(u)
	if err != nil {
		return UpgradeDTO{}, err
	}
	return UpgradeDTO{
		Creature:  CreatureToDTO(u.Creature),
		Steps:     u.Steps,
		FromLevel: u.Creature.Level,
		ToLevel:   u.TargetLevel(),
		Candy:     candy,
		Stardust:  dust,
	}, nil
}

// PlanToDTO converts a plan. Lists are never nil so they encode as [].
func PlanToDTO(plan *optimizer.Plan) (PlanDTO, error) {
	dto := PlanDTO{
		Transfers:      make([]CreatureDTO, 0, len(plan.Transfers)),
		Evolutions:     make([]EvolutionDTO, 0, len(plan.Evolutions)),
		Upgrades:       make([]UpgradeDTO, 0, len(plan.Upgrades)),
		StardustBefore: plan.StardustBefore,
		StardustAfter:  plan.StardustAfter,
	}
	for _, c := range plan.Transfers {
		dto.Transfers = append(dto.Transfers, CreatureToDTO(c))
	}
	for _, e := range plan.Evolutions {
		dto.Evolutions = append(dto.Evolutions, EvolutionDTO{
			Creature: CreatureToDTO(e.Creature),
			Into:     e.Successor.Name,
			ForXP:    e.ForXP,
		})
	}
	for _, u := range plan.Upgrades {
		up, err := UpgradeToDTO(u)
		if err != nil {
			return PlanDTO{}, fmt.Errorf("upgrade of %s: %w", u.Creature.Name, err)
		}
		dto.Upgrades = append(dto.Upgrades, up)
	}
	return dto, nil
}

// ReportToDTO converts an applier report, naming families by their root species
func ReportToDTO(r applier.Report, dex *models.Pokedex) ReportDTO {
	dto := ReportDTO{
		Transferred:   r.Transferred,
		Upgraded:      r.Upgraded,
		Evolved:       r.Evolved,
		XP:            r.XP,
		StardustSpent: r.StardustSpent,
		CandyDelta:    make(map[string]int, len(r.CandyDelta)),
		LuckyEggUsed:  r.LuckyEggUsed,
		EvolveSkipped: r.EvolveSkipped,
		Failed:        r.FailedTransfers + r.FailedUpgrades + r.FailedEvolves,
	}
	for family, delta := range r.CandyDelta {
		dto.CandyDelta[dex.Name(family)] += delta
	}
	return dto
}

// NewError builds an API error body
func NewError(code, message string) ErrorDTO {
	return ErrorDTO{Error: ErrorBody{Code: code, Message: message}}
}
