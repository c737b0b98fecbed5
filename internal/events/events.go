package events

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Kind identifies what happened
type Kind int

const (
	KindPokemonRelease Kind = iota
	KindPokemonEvolved
	KindPokemonUpgraded
	KindUsedLuckyEgg
	KindLuckyEggError
	KindSkipEvolve
	KindItemDiscarded
	KindItemDiscardFail
)

// String returns the wire name of the event kind
func (k Kind) String() string {
	switch k {
	case KindPokemonRelease:
		return "pokemon_release"
	case KindPokemonEvolved:
		return "pokemon_evolved"
	case KindPokemonUpgraded:
		return "pokemon_upgraded"
	case KindUsedLuckyEgg:
		return "used_lucky_egg"
	case KindLuckyEggError:
		return "lucky_egg_error"
	case KindSkipEvolve:
		return "skip_evolve"
	case KindItemDiscarded:
		return "item_discarded"
	case KindItemDiscardFail:
		return "item_discard_fail"
	default:
		return "unknown"
	}
}

// Event is one structured, human readable notification.
// Format references Data entries as {key}.
type Event struct {
	Kind   Kind
	Level  slog.Level
	Format string
	Data   map[string]any
}

// Message renders Format with the values from Data
func (e Event) Message() string {
	if len(e.Data) == 0 {
		return e.Format
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", formatValue(e.Data[k]))
	}
	return strings.NewReplacer(pairs...).Replace(e.Format)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}

// Emitter receives events
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// LogEmitter writes events to a structured logger
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates an emitter. A nil logger falls back to slog.Default().
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit logs the rendered message with the event kind and data as attributes
func (l *LogEmitter) Emit(ctx context.Context, e Event) {
	attrs := make([]slog.Attr, 0, len(e.Data)+1)
	attrs = append(attrs, slog.String("event", e.Kind.String()))
	for k, v := range e.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(ctx, e.Level, e.Message(), attrs...)
}

// Log collects events in memory
type Log struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends the event
func (l *Log) Emit(_ context.Context, e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a copy of everything emitted so far
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Count returns how many events of a kind were emitted
func (l *Log) Count(k Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Multi fans events out to several emitters
type Multi []Emitter

// Emit forwards the event to every emitter in order
func (m Multi) Emit(ctx context.Context, e Event) {
	for _, em := range m {
		em.Emit(ctx, e)
	}
}
