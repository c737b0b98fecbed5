package optimizer

import (
	"math"
	"sort"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// rankKey is the tuple of sort attribute values of one creature.
// Missing values rank below everything.
type rankKey []float64

func keyOf(c *models.Creature, fields []models.Field) rankKey {
	key := make(rankKey, len(fields))
	for i, f := range fields {
		v, ok := f.Value(c)
		if !ok {
			v = math.Inf(-1)
		}
		key[i] = v
	}
	return key
}

// compareKeys compares lexicographically: -1 if a < b, 0 if equal, 1 if a > b
func compareKeys(a, b rankKey) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Selection is the outcome of ranking one family
type Selection struct {
	Evolve  []models.Creature
	Upgrade []models.Creature
	Keep    []models.Creature
}

// sortedFamily filters by the criterion thresholds and sorts by rank, best first.
// Equal ranks keep their roster order.
func sortedFamily(family []models.Creature, k *models.KeepCriterion) []models.Creature {
	type ranked struct {
		c   models.Creature
		key rankKey
	}
	var rs []ranked
	for i := range family {
		if k.MatchesMin(&family[i]) {
			rs = append(rs, ranked{family[i], keyOf(&family[i], k.Sort)})
		}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		return compareKeys(rs[i].key, rs[j].key) > 0
	})

	out := make([]models.Creature, len(rs))
	for i, r := range rs {
		out[i] = r.c
	}
	return out
}

// topRank keeps the best k.Top members and everyone tied with the last of them
func topRank(family []models.Creature, k *models.KeepCriterion) []models.Creature {
	sorted := sortedFamily(family, k)
	index := k.Top - 1
	if index < 0 || index >= len(sorted) {
		return sorted
	}
	worst := keyOf(&sorted[index], k.Sort)
	return atLeast(sorted, k, worst)
}

// betterRank keeps every threshold-passing member ranked at least as high as worst
func betterRank(family []models.Creature, k *models.KeepCriterion, worst rankKey) []models.Creature {
	return atLeast(sortedFamily(family, k), k, worst)
}

func atLeast(sorted []models.Creature, k *models.KeepCriterion, worst rankKey) []models.Creature {
	var out []models.Creature
	for i := range sorted {
		if compareKeys(keyOf(&sorted[i], k.Sort), worst) >= 0 {
			out = append(out, sorted[i])
		}
	}
	return out
}

// uniqueCreatures drops repeated unique ids, keeping the first occurrence
func uniqueCreatures(cs []models.Creature) []models.Creature {
	seen := make(map[uint64]bool, len(cs))
	out := make([]models.Creature, 0, len(cs))
	for _, c := range cs {
		if seen[c.UniqueID] {
			continue
		}
		seen[c.UniqueID] = true
		out = append(out, c)
	}
	return out
}

func (s *Selection) add(best []models.Creature, k *models.KeepCriterion) {
	s.Keep = append(s.Keep, best...)
	if k.Evolve {
		s.Evolve = append(s.Evolve, best...)
	}
	if k.Upgrade {
		s.Upgrade = append(s.Upgrade, best...)
	}
}

func (s *Selection) dedupe() {
	s.Evolve = uniqueCreatures(s.Evolve)
	s.Upgrade = uniqueCreatures(s.Upgrade)
	s.Keep = uniqueCreatures(s.Keep)
}

// Rank applies every keep criterion to one family. Criteria restricted by name
// to other families are skipped.
func (o *Optimizer) Rank(familyID models.SpeciesID, family []models.Creature) Selection {
	names := o.dex.FamilyNames(familyID)

	var sel Selection
	for i := range o.cfg.Keep {
		k := &o.cfg.Keep[i]
		if !k.AppliesTo(names) {
			continue
		}
		sel.add(topRank(family, k), k)
	}
	sel.dedupe()
	return sel
}
