package applier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/napolitain/bag-optimizer/internal/events"
	"github.com/napolitain/bag-optimizer/internal/models"
	"github.com/napolitain/bag-optimizer/internal/solver/optimizer"
)

type fakeBackend struct {
	releaseErr    error
	evolveFail    bool
	upgradeFailAt int // 1-based step that fails, 0 never
	boost         BoostResult
	boostErr      error

	released []uint64
	evolved  []uint64
	upgrades int
	eggsUsed int
}

func (f *fakeBackend) Release(_ context.Context, c models.Creature) (int, error) {
	if f.releaseErr != nil {
		return 0, f.releaseErr
	}
	f.released = append(f.released, c.UniqueID)
	return 1, nil
}

func (f *fakeBackend) Evolve(_ context.Context, c models.Creature) (EvolveResult, error) {
	if f.evolveFail {
		return EvolveResult{}, nil
	}
	f.evolved = append(f.evolved, c.UniqueID)
	next := c
	next.UniqueID = c.UniqueID + 1000
	next.SpeciesID = 17
	next.Name = "Pidgeotto"
	return EvolveResult{Success: true, Evolved: next, Experience: 500, CandyAwarded: 1}, nil
}

func (f *fakeBackend) Upgrade(_ context.Context, c models.Creature) (UpgradeResult, error) {
	f.upgrades++
	if f.upgradeFailAt == f.upgrades {
		return UpgradeResult{}, nil
	}
	c.Level += 0.5
	c.CP += 10
	return UpgradeResult{Success: true, Upgraded: c}, nil
}

func (f *fakeBackend) UseLuckyEgg(context.Context) (BoostResult, error) {
	f.eggsUsed++
	return f.boost, f.boostErr
}

type memRecorder struct {
	transfers, evolutions []string
}

func (m *memRecorder) RecordTransfer(_ context.Context, c models.Creature) error {
	m.transfers = append(m.transfers, c.Name)
	return nil
}

func (m *memRecorder) RecordEvolve(_ context.Context, c models.Creature) error {
	m.evolutions = append(m.evolutions, c.Name)
	return nil
}

func testDex() *models.Pokedex {
	return models.NewPokedex([]*models.Species{
		{ID: 16, Name: "Pidgey", FamilyID: 16, MaxCP: 580, CandyToEvolve: 12, NextEvolutionIDs: []models.SpeciesID{17}},
		{ID: 17, Name: "Pidgeotto", FamilyID: 16, MaxCP: 1085, CandyToEvolve: 50, NextEvolutionIDs: []models.SpeciesID{18}},
		{ID: 18, Name: "Pidgeot", FamilyID: 16, MaxCP: 1994},
	}, nil)
}

func pidgey(uid uint64, cp int) models.Creature {
	return models.Creature{
		UniqueID: uid, SpeciesID: 16, FamilyID: 16, Name: "Pidgey",
		CP: cp, IV: 0.5, Level: 20, EvolutionCost: 12,
		NextEvolutionIDs: []models.SpeciesID{17},
	}
}

func testInventory() *models.Inventory {
	inv := models.NewInventory()
	inv.MaxStorage = 10
	inv.Stardust = 10000
	inv.Candies[16] = 40
	for i := uint64(1); i <= 5; i++ {
		inv.Creatures = append(inv.Creatures, pidgey(i, int(i)*100))
	}
	return inv
}

func testPlan() *optimizer.Plan {
	evolution := func(uid uint64) optimizer.Evolution {
		c := pidgey(uid, int(uid)*100)
		s := c
		s.SpeciesID, s.Name = 17, "Pidgeotto"
		return optimizer.Evolution{Creature: c, Successor: s, ForXP: true}
	}
	return &optimizer.Plan{
		Transfers:  []models.Creature{pidgey(1, 100)},
		Upgrades:   []optimizer.UpgradeRequest{{Creature: pidgey(5, 500), Steps: 2}},
		Evolutions: []optimizer.Evolution{evolution(2), evolution(3)},
	}
}

type harness struct {
	backend  *fakeBackend
	log      *events.Log
	recorder *memRecorder
	pauses   []time.Duration
	applier  *Applier
}

func newHarness(configure func(*models.Config)) *harness {
	cfg := models.DefaultConfig()
	cfg.Transfer, cfg.Evolve, cfg.Upgrade = true, true, true
	if configure != nil {
		configure(cfg)
	}

	h := &harness{backend: &fakeBackend{boost: BoostSuccess}, log: &events.Log{}, recorder: &memRecorder{}}
	h.applier = New(h.backend, cfg, testDex(), h.log,
		WithRecorder(h.recorder),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			h.pauses = append(h.pauses, d)
			return ctx.Err()
		}),
	)
	return h
}

func TestApplyDryRun(t *testing.T) {
	h := newHarness(func(cfg *models.Config) { cfg.DryRun = true })
	inv := testInventory()

	report, err := h.applier.Apply(context.Background(), testPlan(), inv)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if report.Transferred != 1 || report.Upgraded != 1 || report.Evolved != 2 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if len(h.backend.released)+len(h.backend.evolved)+h.backend.upgrades+h.backend.eggsUsed != 0 {
		t.Error("Dry run reached the backend")
	}
	if len(inv.Creatures) != 5 || inv.Candies[16] != 40 || inv.Stardust != 10000 {
		t.Errorf("Dry run mutated the inventory: %d creatures, %d candy, %d stardust", len(inv.Creatures), inv.Candies[16], inv.Stardust)
	}
	if len(h.pauses) != 0 || len(h.recorder.transfers) != 0 {
		t.Error("Dry run paused or recorded")
	}
	if h.log.Count(events.KindPokemonRelease) != 1 || h.log.Count(events.KindPokemonEvolved) != 2 {
		t.Errorf("Unexpected events: %+v", h.log.Events())
	}
}

func TestApplyLive(t *testing.T) {
	h := newHarness(nil)
	inv := testInventory()

	report, err := h.applier.Apply(context.Background(), testPlan(), inv)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// +1 release, -5 for two power-ups from level 20, -11 twice for evolutions
	if inv.Candies[16] != 40+1-5-22 {
		t.Errorf("Candy = %d, want %d", inv.Candies[16], 40+1-5-22)
	}
	if report.CandyDelta[16] != 1-5-22 {
		t.Errorf("CandyDelta = %d", report.CandyDelta[16])
	}
	if inv.Stardust != 10000-5500 || report.StardustSpent != 5500 {
		t.Errorf("Stardust = %d, spent %d", inv.Stardust, report.StardustSpent)
	}
	if report.XP != 1000 {
		t.Errorf("XP = %d, want 1000", report.XP)
	}
	if len(inv.Creatures) != 4 {
		t.Fatalf("Creatures = %d, want 4", len(inv.Creatures))
	}
	for _, c := range inv.Creatures {
		if c.UniqueID == 5 && (c.Level != 21 || c.CP != 520) {
			t.Errorf("Powered up creature not replaced: %+v", c)
		}
		if c.UniqueID == 2 || c.UniqueID == 3 || c.UniqueID == 1 {
			t.Errorf("Creature %d should be gone", c.UniqueID)
		}
	}
	if len(h.recorder.transfers) != 1 || len(h.recorder.evolutions) != 2 {
		t.Errorf("Recorded %v / %v", h.recorder.transfers, h.recorder.evolutions)
	}

	// One transfer pause in [1s, 4s], then one evolve_time pause per evolution
	if len(h.pauses) != 3 {
		t.Fatalf("Pauses = %v", h.pauses)
	}
	if h.pauses[0] < time.Second || h.pauses[0] > 4*time.Second {
		t.Errorf("Transfer pause %v out of range", h.pauses[0])
	}
	if h.pauses[1] != 20*time.Second {
		t.Errorf("Evolve pause = %v, want 20s", h.pauses[1])
	}

	var upgraded string
	for _, e := range h.log.Events() {
		if e.Kind == events.KindPokemonUpgraded {
			upgraded = e.Message()
		}
	}
	want := "Powered up Pidgey [IV 0.5] from level 20.0 [CP 500] to level 21.0 [CP 520] for 5 candy and 5500 stardust"
	if upgraded != want {
		t.Errorf("Upgrade event = %q, want %q", upgraded, want)
	}
}

func TestApplySkipsFailures(t *testing.T) {
	h := newHarness(nil)
	h.backend.releaseErr = errors.New("no response")
	h.backend.evolveFail = true
	h.backend.upgradeFailAt = 2
	inv := testInventory()

	report, err := h.applier.Apply(context.Background(), testPlan(), inv)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if report.Transferred+report.Upgraded+report.Evolved != 0 {
		t.Errorf("Failed actions were counted: %+v", report)
	}
	if report.FailedTransfers != 1 || report.FailedUpgrades != 1 || report.FailedEvolves != 2 {
		t.Errorf("Unexpected failure counts: %+v", report)
	}
	if n := len(h.log.Events()); n != 0 {
		t.Errorf("Failed actions emitted %d events", n)
	}
	// The first power-up step went through and is paid for
	if inv.Stardust != 10000-2500 || inv.Candies[16] != 40-2 {
		t.Errorf("Stardust %d, candy %d after one completed step", inv.Stardust, inv.Candies[16])
	}
}

func TestLuckyEggGate(t *testing.T) {
	tests := []struct {
		name      string
		eggs      int
		onlyEgg   bool
		count     int
		maxStore  int
		boost     BoostResult
		boostErr  error
		evolved   int
		wantEvent events.Kind
		wantText  string
	}{
		{"no egg, egg required", 0, true, 2, 10, BoostSuccess, nil, 0, events.KindSkipEvolve, "No lucky egg available"},
		{"no egg, egg optional", 0, false, 2, 10, BoostSuccess, nil, 2, events.KindPokemonEvolved, ""},
		{"too few, egg required", 1, true, 92, 10, BoostSuccess, nil, 0, events.KindSkipEvolve, "Not enough Pokemon to evolve with lucky egg: 2/92"},
		{"too few, room left", 1, false, 92, 20, BoostSuccess, nil, 0, events.KindSkipEvolve, "Waiting for more Pokemon to evolve with lucky egg: 2/92"},
		{"too few, storage full", 1, false, 92, 10, BoostSuccess, nil, 2, events.KindPokemonEvolved, ""},
		{"egg used", 3, false, 2, 10, BoostSuccess, nil, 2, events.KindUsedLuckyEgg, "Used lucky egg (2 left)."},
		{"already active", 3, false, 2, 10, BoostAlreadyActive, nil, 2, events.KindUsedLuckyEgg, "Lucky egg already active (3 left)."},
		{"refused", 3, false, 2, 10, BoostLocationUnset, nil, 2, events.KindLuckyEggError, "Failed to use lucky egg!"},
		{"no response", 3, false, 2, 10, BoostUnset, errors.New("timeout"), 2, events.KindLuckyEggError, "Failed to use lucky egg!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(func(cfg *models.Config) {
				cfg.MayUseLuckyEgg = true
				cfg.EvolveOnlyWithLuckyEgg = tc.onlyEgg
				cfg.EvolveCountForLuckyEgg = tc.count
			})
			h.backend.boost, h.backend.boostErr = tc.boost, tc.boostErr

			inv := testInventory()
			inv.MaxStorage = tc.maxStore
			inv.Items[models.ItemLuckyEgg] = tc.eggs

			plan := testPlan()
			plan.Transfers, plan.Upgrades = nil, nil
			report, err := h.applier.Apply(context.Background(), plan, inv)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}

			if report.Evolved != tc.evolved {
				t.Errorf("Evolved = %d, want %d", report.Evolved, tc.evolved)
			}
			if report.EvolveSkipped != (tc.evolved == 0) {
				t.Errorf("EvolveSkipped = %v", report.EvolveSkipped)
			}
			if h.log.Count(tc.wantEvent) == 0 {
				t.Fatalf("No %s event in %+v", tc.wantEvent, h.log.Events())
			}
			if tc.wantText != "" {
				found := false
				for _, e := range h.log.Events() {
					if e.Kind == tc.wantEvent && strings.HasSuffix(e.Message(), tc.wantText) {
						found = true
					}
				}
				if !found {
					t.Errorf("No %s event ending in %q: %+v", tc.wantEvent, tc.wantText, h.log.Events())
				}
			}
		})
	}
}

func TestApplyStopsOnCancel(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.applier.Apply(ctx, testPlan(), testInventory())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Apply error = %v, want context.Canceled", err)
	}
	if len(h.backend.evolved) != 0 {
		t.Error("Evolutions ran after cancellation")
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext = %v, want context.Canceled", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext = %v", err)
	}
}
