package loader

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/napolitain/bag-optimizer/internal/models"
)

const defaultMaxStorage = 250

// LoadInventory reads an inventory snapshot from disk
func LoadInventory(path string, dex *models.Pokedex) (*models.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return ParseInventory(data, dex)
}

// ParseInventory decodes an inventory snapshot:
//
//	{"player": {...}, "inventory": [{"inventory_item_data": {...}}, ...]}
//
// Entries carry one of pokemon_data, candy, item or player_stats; anything
// else (pokedex entries, applied items) is ignored.
func ParseInventory(data []byte, dex *models.Pokedex) (*models.Inventory, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid inventory snapshot: malformed JSON")
	}
	doc := gjson.ParseBytes(data)

	inv := models.NewInventory()
	inv.MaxStorage = int(doc.Get("player.max_pokemon_storage").Int())
	if inv.MaxStorage <= 0 {
		inv.MaxStorage = defaultMaxStorage
	}
	doc.Get("player.currencies").ForEach(func(_, c gjson.Result) bool {
		if strings.EqualFold(c.Get("name").String(), "STARDUST") {
			inv.Stardust = int(c.Get("amount").Int())
		}
		return true
	})

	var parseErr error
	doc.Get("inventory").ForEach(func(_, entry gjson.Result) bool {
		item := entry.Get("inventory_item_data")

		if p := item.Get("pokemon_data"); p.Exists() {
			if p.Get("is_egg").Bool() {
				inv.Eggs++
				return true
			}
			c, err := ParseCreature(p, dex)
			if err != nil {
				parseErr = err
				return false
			}
			inv.Creatures = append(inv.Creatures, c)
		}
		if c := item.Get("candy"); c.Exists() {
			inv.Candies[models.SpeciesID(c.Get("family_id").Int())] += int(c.Get("candy").Int())
		}
		if it := item.Get("item"); it.Exists() {
			inv.Items[models.ItemID(it.Get("item_id").Int())] += int(it.Get("count").Int())
		}
		if ps := item.Get("player_stats"); ps.Exists() {
			inv.PlayerLevel = int(ps.Get("level").Int())
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return inv, nil
}

// ParseCreature decodes one pokemon_data object. Derived metrics (ncp, DPS)
// are left for the grouper.
func ParseCreature(p gjson.Result, dex *models.Pokedex) (models.Creature, error) {
	speciesID := models.SpeciesID(p.Get("pokemon_id").Int())
	species, err := dex.Species(speciesID)
	if err != nil {
		return models.Creature{}, fmt.Errorf("pokemon %s: %w", p.Get("id").String(), err)
	}

	c := models.Creature{
		UniqueID:         p.Get("id").Uint(),
		SpeciesID:        species.ID,
		FamilyID:         species.FamilyID,
		Name:             species.Name,
		CP:               int(p.Get("cp").Int()),
		IVAttack:         int(p.Get("individual_attack").Int()),
		IVDefense:        int(p.Get("individual_defense").Int()),
		IVStamina:        int(p.Get("individual_stamina").Int()),
		CPMultiplier:     p.Get("cp_multiplier").Float() + p.Get("additional_cp_multiplier").Float(),
		InFort:           p.Get("deployed_fort_id").String() != "",
		IsFavorite:       p.Get("favorite").Bool(),
		EvolutionCost:    species.CandyToEvolve,
		NextEvolutionIDs: slices.Clone(species.NextEvolutionIDs),
	}
	c.IV = models.ComputeIV(c.IVAttack, c.IVDefense, c.IVStamina)
	c.Level = models.LevelFromCPMultiplier(c.CPMultiplier)
	c.Moveset.Fast = models.MoveID(p.Get("move_1").Int())
	c.Moveset.Charged = models.MoveID(p.Get("move_2").Int())

	return c, nil
}
