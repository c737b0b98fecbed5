package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownLevel is returned when a level has no upgrade cost entry.
// It means the cost table is corrupted or the level value is invalid.
var ErrUnknownLevel = errors.New("no upgrade cost for level")

// MaxLevel is the highest level a power-up step can reach
const MaxLevel = 40.5

// UpgradeCost is the price of the half-level power-up step that ends at a level
type UpgradeCost struct {
	Candy    int
	Stardust int
}

// upgradeCosts is indexed by half levels (level*2), from level 1.0 to 40.5
var upgradeCosts = map[int]UpgradeCost{
	2: {1, 200}, 3: {1, 200}, 4: {1, 200}, 5: {1, 200},
	6: {1, 400}, 7: {1, 400}, 8: {1, 400}, 9: {1, 400},
	10: {1, 600}, 11: {1, 600}, 12: {1, 600}, 13: {1, 600},
	14: {1, 800}, 15: {1, 800}, 16: {1, 800}, 17: {1, 800},
	18: {1, 1000}, 19: {1, 1000}, 20: {1, 1000}, 21: {1, 1000},
	22: {2, 1300}, 23: {2, 1300}, 24: {2, 1300}, 25: {2, 1300},
	26: {2, 1600}, 27: {2, 1600}, 28: {2, 1600}, 29: {2, 1600},
	30: {2, 1900}, 31: {2, 1900}, 32: {2, 1900}, 33: {2, 1900},
	34: {2, 2200}, 35: {2, 2200}, 36: {2, 2200}, 37: {2, 2200},
	38: {2, 2500}, 39: {2, 2500}, 40: {2, 2500}, 41: {2, 2500},
	42: {3, 3000}, 43: {3, 3000}, 44: {3, 3000}, 45: {3, 3000},
	46: {3, 3500}, 47: {3, 3500}, 48: {3, 3500}, 49: {3, 3500},
	50: {3, 4000}, 51: {3, 4000}, 52: {3, 4000}, 53: {3, 4000},
	54: {3, 4500}, 55: {3, 4500}, 56: {3, 4500}, 57: {3, 4500},
	58: {3, 5000}, 59: {3, 5000}, 60: {3, 5000}, 61: {3, 5000},
	62: {4, 6000}, 63: {4, 6000}, 64: {4, 6000}, 65: {4, 6000},
	66: {4, 7000}, 67: {4, 7000}, 68: {4, 7000}, 69: {4, 7000},
	70: {4, 8000}, 71: {4, 8000}, 72: {4, 8000}, 73: {4, 8000},
	74: {4, 9000}, 75: {4, 9000}, 76: {4, 9000}, 77: {4, 9000},
	78: {4, 10000}, 79: {4, 10000}, 80: {4, 10000}, 81: {4, 10000},
}

// UpgradeCostFor returns the candy and stardust needed for the power-up step
// that ends at level.
func UpgradeCostFor(level float64) (UpgradeCost, error) {
	half, ok := halfLevel(level)
	if !ok {
		return UpgradeCost{}, fmt.Errorf("%w %v", ErrUnknownLevel, level)
	}
	cost, ok := upgradeCosts[half]
	if !ok {
		return UpgradeCost{}, fmt.Errorf("%w %v", ErrUnknownLevel, level)
	}
	return cost, nil
}

func halfLevel(level float64) (int, bool) {
	h := level * 2
	r := math.Round(h)
	if math.Abs(h-r) > 1e-6 {
		return 0, false
	}
	return int(r), true
}

// cpMultipliers is the combat power multiplier per half level, starting at level 1.0
var cpMultipliers = []float64{
	0.094, 0.135137432, 0.16639787, 0.192650919, 0.21573247, 0.236572661,
	0.25572005, 0.273530381, 0.29024988, 0.306057377, 0.3210876, 0.335445036,
	0.34921268, 0.362457751, 0.37523559, 0.387592406, 0.39956728, 0.411193551,
	0.42250001, 0.432926419, 0.44310755, 0.453059958, 0.46279839, 0.472336083,
	0.48168495, 0.4908558, 0.49985844, 0.508701765, 0.51739395, 0.525942511,
	0.53435433, 0.542635767, 0.55079269, 0.558830576, 0.56675452, 0.574569153,
	0.58227891, 0.589887917, 0.59740001, 0.604818814, 0.61215729, 0.619399365,
	0.62656713, 0.633644533, 0.64065295, 0.647576426, 0.65443563, 0.661214806,
	0.667934, 0.674577537, 0.68116492, 0.687680648, 0.69414365, 0.700538673,
	0.70688421, 0.713164996, 0.71939909, 0.725571552, 0.7317, 0.734741009,
	0.73776948, 0.740785574, 0.74378943, 0.746781211, 0.74976104, 0.752729087,
	0.75568551, 0.758630378, 0.76156384, 0.764486065, 0.76739717, 0.770297266,
	0.7731865, 0.776064962, 0.77893275, 0.781790055, 0.78463697, 0.787473578,
	0.79030001, 0.7931164,
}

// LevelFromCPMultiplier maps a total cp multiplier to the nearest half level
func LevelFromCPMultiplier(cpm float64) float64 {
	best := 0
	bestDiff := math.Inf(1)
	for i, m := range cpMultipliers {
		if d := math.Abs(m - cpm); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return 1.0 + float64(best)*0.5
}

// CPMultiplierAt returns the multiplier for a level, clamped to the table
func CPMultiplierAt(level float64) float64 {
	i := int(math.Round((level - 1.0) * 2))
	i = max(0, min(i, len(cpMultipliers)-1))
	return cpMultipliers[i]
}

// MaxCPAtLevel scales a level-40 max cp down to level. CP grows with the
// square of the multiplier.
func MaxCPAtLevel(maxCP40, level float64) float64 {
	ratio := CPMultiplierAt(level) / CPMultiplierAt(40)
	return maxCP40 * ratio * ratio
}
