package optimizer

import (
	"sort"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// GroupFamilies partitions the roster by evolution root. Each returned creature
// is an annotated copy carrying its ncp and moveset metrics; the roster itself
// is not modified.
func GroupFamilies(roster []models.Creature, dex *models.Pokedex) map[models.SpeciesID][]models.Creature {
	families := make(map[models.SpeciesID][]models.Creature)
	for _, c := range roster {
		c = Annotate(c, dex)
		families[c.FamilyID] = append(families[c.FamilyID], c)
	}
	return families
}

// Annotate fills the derived fields of a creature from static data
func Annotate(c models.Creature, dex *models.Pokedex) models.Creature {
	c.FamilyID = dex.FamilyOf(c.SpeciesID)
	c.NCP = dex.NormalizedCP(&c)
	c.Moveset = dex.Moveset(c.SpeciesID, c.Moveset.Fast, c.Moveset.Charged)
	return c
}

// familyOrder returns the family ids in ascending order so passes are deterministic
func familyOrder(families map[models.SpeciesID][]models.Creature) []models.SpeciesID {
	ids := make([]models.SpeciesID, 0, len(families))
	for id := range families {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
