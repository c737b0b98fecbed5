package models

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRecycleKeep is how many items are kept when a recycle entry has no count
const DefaultRecycleKeep = 20

// KeepCriterionFile is one keep criterion as written in the YAML configuration
type KeepCriterionFile struct {
	Top     int                `yaml:"top"`
	Sort    []string           `yaml:"sort"`
	Min     map[string]float64 `yaml:"min,omitempty"`
	Names   []string           `yaml:"names,omitempty"`
	Evolve  bool               `yaml:"evolve,omitempty"`
	Upgrade bool               `yaml:"upgrade,omitempty"`
}

// FileConfig is the raw configuration file
type FileConfig struct {
	Transfer bool `yaml:"transfer"`
	Evolve   bool `yaml:"evolve"`
	Upgrade  bool `yaml:"upgrade"`

	EvolveTime             float64  `yaml:"evolve_time"` // seconds
	EvolveForXP            bool     `yaml:"evolve_for_xp"`
	PokemonForXP           []string `yaml:"pokemon_for_xp"`
	EvolveOnlyWithLuckyEgg bool     `yaml:"evolve_only_with_lucky_egg"`
	EvolveCountForLuckyEgg int      `yaml:"evolve_count_for_lucky_egg"`
	MayUseLuckyEgg         bool     `yaml:"may_use_lucky_egg"`

	TransferWaitMin float64 `yaml:"transfer_wait_min"` // seconds
	TransferWaitMax float64 `yaml:"transfer_wait_max"`
	MinSlotLeft     int     `yaml:"min_slot_left"`

	MultiBranch map[int]int         `yaml:"multi_branch"`
	Keep        []KeepCriterionFile `yaml:"keep"`
	Recycle     map[string]*int     `yaml:"recycle"`

	DryRun bool `yaml:"dry_run"`
}

// Config is the compiled, read-only configuration handed to every component
type Config struct {
	Transfer bool
	Evolve   bool
	Upgrade  bool

	EvolveTime             float64
	EvolveForXP            bool
	PokemonForXP           []string
	EvolveOnlyWithLuckyEgg bool
	EvolveCountForLuckyEgg int
	MayUseLuckyEgg         bool

	TransferWaitMin float64
	TransferWaitMax float64
	MinSlotLeft     int

	// MultiBranch maps a family root to the number of final forms it has
	MultiBranch map[SpeciesID]int
	Keep        []KeepCriterion
	Recycle     map[string]int // item name or numeric id -> count to keep

	DryRun bool
}

// UseForXP reports whether the species name is allowed as evolve-for-xp fodder
func (c *Config) UseForXP(name string) bool {
	return slices.Contains(c.PokemonForXP, name)
}

// DefaultKeep returns the default keep criteria
func DefaultKeep() []KeepCriterionFile {
	return []KeepCriterionFile{
		{Top: 1, Sort: []string{"cp"}},
		{Top: 1, Sort: []string{"ncp", "iv"}},
		{Top: 1, Sort: []string{"iv"}},
		{Top: 1, Sort: []string{"ncp", "iv"}, Min: map[string]float64{"iv": 0.9}, Evolve: true},
		{Top: 1, Sort: []string{"ncp", "iv"}, Min: map[string]float64{"iv": 0.9, "moveset.attack_perfection": 1.0}, Upgrade: true},
		{Top: 1, Sort: []string{"ncp", "iv"}, Min: map[string]float64{"iv": 0.9, "moveset.defense_perfection": 1.0}, Upgrade: true},
	}
}

// DefaultFileConfig returns the configuration used for every omitted key
func DefaultFileConfig() FileConfig {
	return FileConfig{
		EvolveTime:             20,
		EvolveForXP:            true,
		EvolveCountForLuckyEgg: 92,
		TransferWaitMin:        1,
		TransferWaitMax:        4,
		MinSlotLeft:            5,
	}
}

func (f *FileConfig) fillDefaults() {
	if f.PokemonForXP == nil {
		f.PokemonForXP = []string{"Rattata", "Pidgey", "Weedle", "Zubat", "Caterpie"}
	}
	if f.MultiBranch == nil {
		f.MultiBranch = map[int]int{133: 3}
	}
	if f.Keep == nil {
		f.Keep = DefaultKeep()
	}
	if f.Recycle == nil {
		f.Recycle = map[string]*int{}
	}
}

// DefaultConfig returns the compiled default configuration
func DefaultConfig() *Config {
	f := DefaultFileConfig()
	f.fillDefaults()
	cfg, err := f.Compile()
	if err != nil {
		// Defaults only reference known fields
		panic(err)
	}
	return cfg
}

// LoadConfig reads a YAML configuration file and compiles it
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig compiles YAML configuration bytes. Omitted keys take their defaults.
func ParseConfig(data []byte) (*Config, error) {
	f := DefaultFileConfig()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	f.fillDefaults()
	return f.Compile()
}

// Validate checks value ranges that cannot be expressed in YAML
func (f *FileConfig) Validate() error {
	var errs []error
	if f.TransferWaitMin < 0 || f.TransferWaitMax < f.TransferWaitMin {
		errs = append(errs, fmt.Errorf("transfer_wait_min %v must be in [0, transfer_wait_max %v]", f.TransferWaitMin, f.TransferWaitMax))
	}
	if f.EvolveTime < 0 {
		errs = append(errs, fmt.Errorf("evolve_time must not be negative"))
	}
	for root, n := range f.MultiBranch {
		if n < 1 {
			errs = append(errs, fmt.Errorf("multi_branch %d: branch count must be positive", root))
		}
	}
	for i, k := range f.Keep {
		if len(k.Sort) == 0 {
			errs = append(errs, fmt.Errorf("keep[%d]: sort must not be empty", i))
		}
		if k.Top < 0 {
			errs = append(errs, fmt.Errorf("keep[%d]: top must be at least 1", i))
		}
	}
	return errors.Join(errs...)
}

// Compile validates the file and resolves attribute paths into typed fields
func (f *FileConfig) Compile() (*Config, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Transfer:               f.Transfer,
		Evolve:                 f.Evolve,
		Upgrade:                f.Upgrade,
		EvolveTime:             f.EvolveTime,
		EvolveForXP:            f.EvolveForXP,
		PokemonForXP:           slices.Clone(f.PokemonForXP),
		EvolveOnlyWithLuckyEgg: f.EvolveOnlyWithLuckyEgg,
		EvolveCountForLuckyEgg: f.EvolveCountForLuckyEgg,
		MayUseLuckyEgg:         f.MayUseLuckyEgg,
		TransferWaitMin:        f.TransferWaitMin,
		TransferWaitMax:        f.TransferWaitMax,
		MinSlotLeft:            f.MinSlotLeft,
		MultiBranch:            make(map[SpeciesID]int, len(f.MultiBranch)),
		Recycle:                make(map[string]int, len(f.Recycle)),
		DryRun:                 f.DryRun,
	}

	// Evolving only under a lucky egg is impossible without permission to use one
	if !cfg.MayUseLuckyEgg && cfg.EvolveOnlyWithLuckyEgg {
		cfg.Evolve = false
	}

	for root, n := range f.MultiBranch {
		cfg.MultiBranch[SpeciesID(root)] = n
	}
	for name, n := range f.Recycle {
		cfg.Recycle[name] = DefaultRecycleKeep
		if n != nil {
			cfg.Recycle[name] = *n
		}
	}

	for i, raw := range f.Keep {
		k, err := compileCriterion(raw)
		if err != nil {
			return nil, fmt.Errorf("keep[%d]: %w", i, err)
		}
		cfg.Keep = append(cfg.Keep, k)
	}
	return cfg, nil
}

func compileCriterion(raw KeepCriterionFile) (KeepCriterion, error) {
	k := KeepCriterion{
		Top:     raw.Top,
		Names:   slices.Clone(raw.Names),
		Evolve:  raw.Evolve,
		Upgrade: raw.Upgrade,
	}
	if k.Top == 0 {
		k.Top = 1
	}

	for _, path := range raw.Sort {
		field, err := ParseField(path)
		if err != nil {
			return KeepCriterion{}, err
		}
		k.Sort = append(k.Sort, field)
	}

	paths := make([]string, 0, len(raw.Min))
	for path := range raw.Min {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		field, err := ParseField(path)
		if err != nil {
			return KeepCriterion{}, err
		}
		k.Min = append(k.Min, Threshold{Field: field, Min: raw.Min[path]})
	}
	return k, nil
}

// String renders a criterion the way it would be written in the configuration
func (k KeepCriterion) String() string {
	parts := make([]string, 0, len(k.Sort))
	for _, f := range k.Sort {
		parts = append(parts, f.String())
	}
	s := fmt.Sprintf("top %d by [%s]", k.Top, strings.Join(parts, ", "))
	for _, t := range k.Min {
		s += fmt.Sprintf(" %s>=%g", t.Field, t.Min)
	}
	return s
}
