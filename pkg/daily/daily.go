// Package daily generates the day's random spell selection: a uniform
// sample without replacement, regenerated once per calendar day and
// persisted alongside its date stamp.
package daily

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/events"
	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/spells"
	"github.com/agentstation/grimoire/pkg/store"
)

// SampleSize is how many spells a complete daily selection holds. The
// persisted selection always has exactly this many items or none.
const SampleSize = 12

// Source supplies the candidate pool and resolves full spell records.
type Source interface {
	SpellIndexes(ctx context.Context) ([]string, error)
	GetSpell(ctx context.Context, index string) (spells.Spell, error)
}

// Stamp returns today's date stamp in local time, YYYY-MM-DD.
func Stamp() string {
	return time.Now().Format("2006-01-02")
}

// NeedsRefresh reports whether a selection generated under last is
// stale: absent stamps and stamps from any other day both qualify.
func NeedsRefresh(last *string) bool {
	return last == nil || *last != Stamp()
}

// Generator produces and persists daily selections. Overlapping Refresh
// calls are suppressed: while one is in flight, others return the
// current persisted record untouched.
type Generator struct {
	store    *store.Store
	bus      *events.Bus
	source   Source
	inflight atomic.Bool
	logger   *zerolog.Logger
}

// NewGenerator creates a daily selection generator.
func NewGenerator(s *store.Store, bus *events.Bus, source Source) *Generator {
	return &Generator{store: s, bus: bus, source: source, logger: logging.Default()}
}

// Refresh returns today's selection, regenerating it first when the
// persisted one is stale or force is set. The second return reports
// whether a new selection was generated on this call.
func (g *Generator) Refresh(ctx context.Context, force bool) (store.Record, bool, error) {
	rec := g.store.Load(store.KeyDaily)
	if !force && !NeedsRefresh(rec.GeneratedDate) && len(rec.Items) == SampleSize {
		return rec, false, nil
	}

	if !g.inflight.CompareAndSwap(false, true) {
		g.logger.Debug().Msg("Daily generation already in flight, skipping")
		return rec, false, nil
	}
	defer g.inflight.Store(false)

	items, err := g.generate(ctx)
	if err != nil {
		return rec, false, err
	}

	stamp := Stamp()
	rec = store.EmptyRecord()
	rec.Items = items
	rec.GeneratedDate = &stamp

	if !g.store.Save(store.KeyDaily, rec) {
		g.logger.Error().Msg("Failed to persist daily selection")
		return rec, false, nil
	}

	g.bus.Publish(events.TopicDailyUpdated, rec.Items)
	g.logger.Info().Int("count", len(rec.Items)).Str("stamp", stamp).
		Msg("Generated daily selection")
	return rec, true, nil
}

// generate draws candidates in random order until the sample is full or
// the pool is exhausted. A candidate that fails to fetch or sanitize is
// skipped, not counted.
func (g *Generator) generate(ctx context.Context) ([]spells.Spell, error) {
	indexes, err := g.source.SpellIndexes(ctx)
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return []spells.Spell{}, nil
	}

	selected := make([]spells.Spell, 0, SampleSize)
	for _, i := range rand.Perm(len(indexes)) {
		if len(selected) == SampleSize {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := g.source.GetSpell(ctx, indexes[i])
		if err != nil {
			g.logger.Warn().Err(err).Str("spell", indexes[i]).
				Msg("Daily candidate fetch failed, drawing another")
			continue
		}
		clean, ok := spells.Sanitize(s)
		if !ok {
			g.logger.Warn().Str("spell", indexes[i]).
				Msg("Daily candidate failed sanitization, drawing another")
			continue
		}
		selected = append(selected, clean)
	}

	// The persisted size invariant: a partial sample is discarded rather
	// than stored at an in-between length.
	if len(selected) < SampleSize {
		g.logger.Warn().Int("got", len(selected)).Int("want", SampleSize).
			Msg("Candidate pool exhausted before filling daily selection")
		return []spells.Spell{}, nil
	}
	return selected, nil
}
