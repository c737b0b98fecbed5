package applier

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/napolitain/bag-optimizer/internal/events"
	"github.com/napolitain/bag-optimizer/internal/models"
	"github.com/napolitain/bag-optimizer/internal/solver/optimizer"
)

// Sleeper pauses between live actions. It returns early with ctx.Err()
// when the context is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Report summarizes what an Apply call did. Candy, stardust and xp only
// account for live actions.
type Report struct {
	Transferred int
	Upgraded    int
	Evolved     int

	XP            int
	StardustSpent int
	CandyDelta    map[models.SpeciesID]int

	LuckyEggUsed    bool
	EvolveSkipped   bool
	FailedTransfers int
	FailedUpgrades  int
	FailedEvolves   int
}

// Applier executes a plan against the game, one action at a time
type Applier struct {
	backend  Backend
	cfg      *models.Config
	dex      *models.Pokedex
	emitter  events.Emitter
	recorder Recorder
	sleep    Sleeper
	jitter   func() float64
	logger   *slog.Logger
}

// Option configures an Applier
type Option func(*Applier)

// WithRecorder stores every live release and evolution
func WithRecorder(r Recorder) Option {
	return func(a *Applier) { a.recorder = r }
}

// WithSleeper replaces the pause between live actions
func WithSleeper(s Sleeper) Option {
	return func(a *Applier) { a.sleep = s }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an applier. A nil emitter logs events through slog.
func New(backend Backend, cfg *models.Config, dex *models.Pokedex, emitter events.Emitter, opts ...Option) *Applier {
	a := &Applier{
		backend: backend,
		cfg:     cfg,
		dex:     dex,
		emitter: emitter,
		sleep:   sleepContext,
		jitter:  rand.Float64,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.emitter == nil {
		a.emitter = events.NewLogEmitter(a.logger)
	}
	return a
}

// Apply releases, powers up, then evolves, in that order. Failed actions are
// skipped. Only a cancelled context stops it early.
func (a *Applier) Apply(ctx context.Context, plan *optimizer.Plan, inv *models.Inventory) (Report, error) {
	report := Report{CandyDelta: make(map[models.SpeciesID]int)}

	a.logger.Info("Transferring Pokemon", "count", len(plan.Transfers))
	for _, c := range plan.Transfers {
		if err := a.transfer(ctx, c, inv, &report); err != nil {
			return report, err
		}
	}

	a.logger.Info("Powering up Pokemon", "count", len(plan.Upgrades))
	for _, u := range plan.Upgrades {
		if err := a.upgrade(ctx, u, inv, &report); err != nil {
			return report, err
		}
	}

	if len(plan.Evolutions) == 0 {
		return report, nil
	}
	if !a.luckyEggGate(ctx, len(plan.Evolutions), inv, &report) {
		report.EvolveSkipped = true
		return report, nil
	}

	a.logger.Info("Evolving Pokemon", "count", len(plan.Evolutions))
	for _, e := range plan.Evolutions {
		if err := a.evolve(ctx, e, inv, &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (a *Applier) live(flag bool) bool {
	return flag && !a.cfg.DryRun
}

func (a *Applier) familyOf(c models.Creature) models.SpeciesID {
	if c.FamilyID != 0 {
		return c.FamilyID
	}
	return a.dex.FamilyOf(c.SpeciesID)
}

func (a *Applier) transfer(ctx context.Context, c models.Creature, inv *models.Inventory, report *Report) error {
	live := a.live(a.cfg.Transfer)
	family := a.familyOf(c)

	if live {
		awarded, err := a.backend.Release(ctx, c)
		if err != nil {
			a.logger.Warn("Release failed", "pokemon", c.Name, "id", c.UniqueID, "error", err)
			report.FailedTransfers++
			return ctx.Err()
		}
		inv.Candies[family] += awarded
		report.CandyDelta[family] += awarded
	}

	a.emitter.Emit(ctx, events.Event{
		Kind:   events.KindPokemonRelease,
		Level:  slog.LevelInfo,
		Format: "Exchanged {pokemon} [IV {iv}] [CP {cp}] [{candy} candies]",
		Data: map[string]any{
			"pokemon": c.Name,
			"iv":      c.IV,
			"cp":      c.CP,
			"candy":   inv.Candy(family),
		},
	})
	report.Transferred++

	if !live {
		return nil
	}
	inv.Remove(c.UniqueID)
	if a.recorder != nil {
		if err := a.recorder.RecordTransfer(ctx, c); err != nil {
			a.logger.Warn("Could not record transfer", "pokemon", c.Name, "error", err)
		}
	}
	return a.sleep(ctx, a.transferWait())
}

// transferWait picks a random pause in [transfer_wait_min, transfer_wait_max]
func (a *Applier) transferWait() time.Duration {
	lo, hi := a.cfg.TransferWaitMin, a.cfg.TransferWaitMax
	secs := lo + a.jitter()*(hi-lo)
	return time.Duration(secs * float64(time.Second))
}

func (a *Applier) upgrade(ctx context.Context, u optimizer.UpgradeRequest, inv *models.Inventory, report *Report) error {
	live := a.live(a.cfg.Upgrade)
	from := u.Creature
	current := from
	done := 0

	for i := 0; i < u.Steps; i++ {
		if !live {
			current.Level += 0.5
			done++
			continue
		}
		res, err := a.backend.Upgrade(ctx, current)
		if err != nil || !res.Success {
			a.logger.Warn("Power-up failed", "pokemon", from.Name, "id", from.UniqueID, "step", i+1, "error", err)
			break
		}
		current = res.Upgraded
		done++
	}

	spent := optimizer.UpgradeRequest{Creature: from, Steps: done}
	candy, err := optimizer.CandyCost(spent)
	if err != nil {
		return fmt.Errorf("power-up of %s: %w", from.Name, err)
	}
	dust, err := optimizer.StardustCost(spent)
	if err != nil {
		return fmt.Errorf("power-up of %s: %w", from.Name, err)
	}

	if live && done > 0 {
		family := a.familyOf(from)
		inv.Candies[family] -= candy
		inv.Stardust -= dust
		inv.Replace(current)
		report.CandyDelta[family] -= candy
		report.StardustSpent += dust
	}
	if done < u.Steps {
		report.FailedUpgrades++
		return ctx.Err()
	}

	a.emitter.Emit(ctx, events.Event{
		Kind:   events.KindPokemonUpgraded,
		Level:  slog.LevelInfo,
		Format: "Powered up {pokemon} [IV {iv}] from level {from_level} [CP {from_cp}] to level {to_level} [CP {to_cp}] for {candy} candy and {stardust} stardust",
		Data: map[string]any{
			"pokemon":    from.Name,
			"iv":         from.IV,
			"from_level": from.Level,
			"from_cp":    from.CP,
			"to_level":   current.Level,
			"to_cp":      current.CP,
			"candy":      candy,
			"stardust":   dust,
		},
	})
	report.Upgraded++
	return nil
}

// luckyEggGate decides whether the evolution step runs and activates a lucky
// egg when enough evolutions are queued.
func (a *Applier) luckyEggGate(ctx context.Context, queued int, inv *models.Inventory, report *Report) bool {
	if !a.cfg.Evolve || !a.cfg.MayUseLuckyEgg || a.cfg.DryRun {
		return true
	}

	eggs := inv.Items[models.ItemLuckyEgg]
	switch {
	case eggs == 0:
		if a.cfg.EvolveOnlyWithLuckyEgg {
			a.skipEvolve(ctx, "Skipping evolution step. No lucky egg available")
			return false
		}
		return true
	case queued < a.cfg.EvolveCountForLuckyEgg:
		progress := fmt.Sprintf("%d/%d", queued, a.cfg.EvolveCountForLuckyEgg)
		if a.cfg.EvolveOnlyWithLuckyEgg {
			a.skipEvolve(ctx, "Skipping evolution step. Not enough Pokemon to evolve with lucky egg: "+progress)
			return false
		}
		if inv.SpaceLeft() > a.cfg.MinSlotLeft {
			a.skipEvolve(ctx, "Waiting for more Pokemon to evolve with lucky egg: "+progress)
			return false
		}
		return true
	}

	report.LuckyEggUsed = a.useLuckyEgg(ctx, inv)
	return true
}

func (a *Applier) skipEvolve(ctx context.Context, msg string) {
	a.emitter.Emit(ctx, events.Event{Kind: events.KindSkipEvolve, Level: slog.LevelInfo, Format: msg})
}

func (a *Applier) useLuckyEgg(ctx context.Context, inv *models.Inventory) bool {
	res, err := a.backend.UseLuckyEgg(ctx)
	if err != nil {
		a.logger.Warn("Lucky egg request failed", "error", err)
		res = BoostUnset
	}

	switch res {
	case BoostSuccess:
		inv.Items[models.ItemLuckyEgg]--
		a.emitter.Emit(ctx, events.Event{
			Kind:   events.KindUsedLuckyEgg,
			Level:  slog.LevelInfo,
			Format: "Used lucky egg ({amount_left} left).",
			Data:   map[string]any{"amount_left": inv.Items[models.ItemLuckyEgg]},
		})
		return true
	case BoostAlreadyActive:
		a.emitter.Emit(ctx, events.Event{
			Kind:   events.KindUsedLuckyEgg,
			Level:  slog.LevelInfo,
			Format: "Lucky egg already active ({amount_left} left).",
			Data:   map[string]any{"amount_left": inv.Items[models.ItemLuckyEgg]},
		})
		return true
	default:
		a.emitter.Emit(ctx, events.Event{
			Kind:   events.KindLuckyEggError,
			Level:  slog.LevelError,
			Format: "Failed to use lucky egg!",
			Data:   map[string]any{"result": res.String()},
		})
		return false
	}
}

func (a *Applier) evolve(ctx context.Context, e optimizer.Evolution, inv *models.Inventory, report *Report) error {
	live := a.live(a.cfg.Evolve)
	c := e.Creature
	family := a.familyOf(c)

	res := EvolveResult{Success: true, Evolved: e.Successor}
	if live {
		var err error
		res, err = a.backend.Evolve(ctx, c)
		if err != nil || !res.Success {
			a.logger.Warn("Evolution failed", "pokemon", c.Name, "id", c.UniqueID, "error", err)
			report.FailedEvolves++
			return ctx.Err()
		}
		consumed := c.EvolutionCost - res.CandyAwarded
		inv.Candies[family] -= consumed
		report.CandyDelta[family] -= consumed
		report.XP += res.Experience
	}

	a.emitter.Emit(ctx, events.Event{
		Kind:   events.KindPokemonEvolved,
		Level:  slog.LevelInfo,
		Format: "Evolved {pokemon} [IV {iv}] [CP {cp}] [{candy} candies] [+{xp} xp]",
		Data: map[string]any{
			"pokemon": c.Name,
			"iv":      c.IV,
			"cp":      c.CP,
			"candy":   inv.Candy(family),
			"xp":      res.Experience,
		},
	})
	report.Evolved++

	if !live {
		return nil
	}
	inv.Remove(c.UniqueID)
	inv.Creatures = append(inv.Creatures, res.Evolved)
	if a.recorder != nil {
		if err := a.recorder.RecordEvolve(ctx, c); err != nil {
			a.logger.Warn("Could not record evolution", "pokemon", c.Name, "error", err)
		}
	}
	return a.sleep(ctx, time.Duration(a.cfg.EvolveTime*float64(time.Second)))
}
