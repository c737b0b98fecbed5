package applier

import (
	"context"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// BoostResult is the outcome code of a lucky egg request
type BoostResult int

const (
	BoostUnset BoostResult = iota
	BoostSuccess
	BoostInvalidItemType
	BoostAlreadyActive
	BoostNoItemsRemaining
	BoostLocationUnset
)

// String returns a readable name for logs
func (r BoostResult) String() string {
	switch r {
	case BoostSuccess:
		return "success"
	case BoostInvalidItemType:
		return "invalid item type"
	case BoostAlreadyActive:
		return "xp boost already active"
	case BoostNoItemsRemaining:
		return "no items remaining"
	case BoostLocationUnset:
		return "location unset"
	default:
		return "unset"
	}
}

// EvolveResult is what the game reports after an evolve request
type EvolveResult struct {
	Success      bool
	Evolved      models.Creature
	Experience   int
	CandyAwarded int
}

// UpgradeResult is what the game reports after one power-up step
type UpgradeResult struct {
	Success  bool
	Upgraded models.Creature
}

// Backend performs the mutating game requests. An error means no usable
// response was received; a refused request comes back without Success.
type Backend interface {
	Release(ctx context.Context, c models.Creature) (candyAwarded int, err error)
	Evolve(ctx context.Context, c models.Creature) (EvolveResult, error)
	Upgrade(ctx context.Context, c models.Creature) (UpgradeResult, error)
	UseLuckyEgg(ctx context.Context) (BoostResult, error)
}

// Recorder keeps a history of released and evolved creatures
type Recorder interface {
	RecordTransfer(ctx context.Context, c models.Creature) error
	RecordEvolve(ctx context.Context, c models.Creature) error
}
