package models

import "testing"

func TestInventorySpace(t *testing.T) {
	inv := NewInventory()
	inv.MaxStorage = 10
	inv.Eggs = 2
	inv.Creatures = []Creature{{UniqueID: 1}, {UniqueID: 2}, {UniqueID: 3}}

	if inv.SpaceUsed() != 5 || inv.SpaceLeft() != 5 {
		t.Errorf("SpaceUsed/SpaceLeft = %d/%d, want 5/5", inv.SpaceUsed(), inv.SpaceLeft())
	}

	if !inv.Remove(2) || inv.Remove(2) {
		t.Error("Remove should succeed exactly once")
	}
	if len(inv.Creatures) != 2 || inv.Creatures[1].UniqueID != 3 {
		t.Errorf("Unexpected roster after Remove: %+v", inv.Creatures)
	}

	if !inv.Replace(Creature{UniqueID: 3, CP: 99}) || inv.Creatures[1].CP != 99 {
		t.Error("Replace did not swap the creature")
	}
	if inv.Replace(Creature{UniqueID: 42}) {
		t.Error("Replace of an unknown creature should fail")
	}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		in   string
		want ItemID
		ok   bool
	}{
		{"Poke Ball", ItemPokeBall, true},
		{"razz berry", ItemRazzBerry, true},
		{" 301 ", ItemLuckyEgg, true},
		{"Golden Banana", 0, false},
	}
	for _, tc := range tests {
		got, ok := ParseItem(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseItem(%q) = %v, %v, want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if ItemID(999).String() != "Item 999" {
		t.Errorf("Unknown item name = %q", ItemID(999).String())
	}
}
