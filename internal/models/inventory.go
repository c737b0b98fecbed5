package models

import (
	"strconv"
	"strings"
)

// ItemID identifies a bag item kind
type ItemID int

const (
	ItemPokeBall       ItemID = 1
	ItemGreatBall      ItemID = 2
	ItemUltraBall      ItemID = 3
	ItemMasterBall     ItemID = 4
	ItemPotion         ItemID = 101
	ItemSuperPotion    ItemID = 102
	ItemHyperPotion    ItemID = 103
	ItemMaxPotion      ItemID = 104
	ItemRevive         ItemID = 201
	ItemMaxRevive      ItemID = 202
	ItemLuckyEgg       ItemID = 301
	ItemIncense        ItemID = 401
	ItemTroyDisk       ItemID = 501
	ItemRazzBerry      ItemID = 701
	ItemIncubatorBasic ItemID = 902
	ItemIncubatorInf   ItemID = 901
)

var itemNames = map[ItemID]string{
	ItemPokeBall:       "Poke Ball",
	ItemGreatBall:      "Great Ball",
	ItemUltraBall:      "Ultra Ball",
	ItemMasterBall:     "Master Ball",
	ItemPotion:         "Potion",
	ItemSuperPotion:    "Super Potion",
	ItemHyperPotion:    "Hyper Potion",
	ItemMaxPotion:      "Max Potion",
	ItemRevive:         "Revive",
	ItemMaxRevive:      "Max Revive",
	ItemLuckyEgg:       "Lucky Egg",
	ItemIncense:        "Incense",
	ItemTroyDisk:       "Troy Disk",
	ItemRazzBerry:      "Razz Berry",
	ItemIncubatorBasic: "Egg Incubator",
	ItemIncubatorInf:   "Egg Incubator (Unlimited)",
}

// String returns the display name of the item, or its number when unknown
func (id ItemID) String() string {
	if n, ok := itemNames[id]; ok {
		return n
	}
	return "Item " + strconv.Itoa(int(id))
}

// ParseItem resolves an item by display name (case-insensitive) or numeric id
func ParseItem(s string) (ItemID, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return ItemID(n), true
	}
	for id, name := range itemNames {
		if strings.EqualFold(name, s) {
			return id, true
		}
	}
	return 0, false
}

// Inventory is one snapshot of the account state
type Inventory struct {
	Creatures []Creature
	Candies   map[SpeciesID]int // keyed by family root
	Items     map[ItemID]int

	PlayerLevel int
	Stardust    int
	MaxStorage  int
	Eggs        int
}

// NewInventory returns an empty inventory with its maps allocated
func NewInventory() *Inventory {
	return &Inventory{
		Candies: make(map[SpeciesID]int),
		Items:   make(map[ItemID]int),
	}
}

// SpaceUsed counts creatures and eggs, which share the storage
func (inv *Inventory) SpaceUsed() int {
	return len(inv.Creatures) + inv.Eggs
}

// SpaceLeft returns the free storage slots
func (inv *Inventory) SpaceLeft() int {
	return inv.MaxStorage - inv.SpaceUsed()
}

// Candy returns the candy owned for a family root
func (inv *Inventory) Candy(family SpeciesID) int {
	return inv.Candies[family]
}

// Remove drops a creature by unique id and reports whether it was owned
func (inv *Inventory) Remove(uid uint64) bool {
	for i := range inv.Creatures {
		if inv.Creatures[i].UniqueID == uid {
			inv.Creatures = append(inv.Creatures[:i], inv.Creatures[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the creature with the same unique id for c
func (inv *Inventory) Replace(c Creature) bool {
	for i := range inv.Creatures {
		if inv.Creatures[i].UniqueID == c.UniqueID {
			inv.Creatures[i] = c
			return true
		}
	}
	return false
}
