// Package recycle discards bag items above their configured keep counts.
package recycle

import (
	"context"
	"log/slog"
	"sort"

	"github.com/napolitain/bag-optimizer/internal/events"
	"github.com/napolitain/bag-optimizer/internal/models"
)

// Discard is one planned recycle request
type Discard struct {
	Item  models.ItemID
	Count int
	Keep  int
}

// Plan lists the items owned above their keep count, by item id. Keys of
// keep are item names or numeric ids; items not listed are never recycled.
func Plan(items map[models.ItemID]int, keep map[string]int) []Discard {
	limits := make(map[models.ItemID]int, len(keep))
	for key, n := range keep {
		id, ok := models.ParseItem(key)
		if !ok {
			continue
		}
		limits[id] = n
	}

	var out []Discard
	for id, limit := range limits {
		if owned := items[id]; owned > limit {
			out = append(out, Discard{Item: id, Count: owned - limit, Keep: limit})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

// Backend discards items
type Backend interface {
	Recycle(ctx context.Context, item models.ItemID, count int) (bool, error)
}

// Recycler applies discards and reports each outcome as an event
type Recycler struct {
	backend Backend
	emitter events.Emitter
	logger  *slog.Logger
}

// NewRecycler creates a recycler. A nil logger falls back to slog.Default().
func NewRecycler(backend Backend, emitter events.Emitter, logger *slog.Logger) *Recycler {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewLogEmitter(logger)
	}
	return &Recycler{backend: backend, emitter: emitter, logger: logger}
}

// Run discards every planned item and updates the bag for each accepted
// request. It returns how many requests succeeded.
func (r *Recycler) Run(ctx context.Context, items map[models.ItemID]int, keep map[string]int) (int, error) {
	done := 0
	for _, d := range Plan(items, keep) {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		ok, err := r.backend.Recycle(ctx, d.Item, d.Count)
		if err != nil {
			r.logger.Warn("Recycle request failed", "item", d.Item.String(), "error", err)
		}
		if err != nil || !ok {
			r.emitter.Emit(ctx, events.Event{
				Kind:   events.KindItemDiscardFail,
				Level:  slog.LevelInfo,
				Format: "Failed to discard {item}",
				Data:   map[string]any{"item": d.Item.String()},
			})
			continue
		}

		items[d.Item] -= d.Count
		done++
		r.emitter.Emit(ctx, events.Event{
			Kind:   events.KindItemDiscarded,
			Level:  slog.LevelInfo,
			Format: "Discarded {amount}x {item} (maximum {maximum}).",
			Data: map[string]any{
				"amount":  d.Count,
				"item":    d.Item.String(),
				"maximum": d.Keep,
			},
		})
	}
	return done, nil
}
