// Package catalog assembles the full spell catalog from the upstream
// gateway: discover the spellcasting classes, index their spells,
// deduplicate across classes, and materialize full records in
// rate-limited batches. Assembled results are cached in memory so
// repeated reads within a session cost nothing.
package catalog

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/batch"
	"github.com/agentstation/grimoire/pkg/errors"
	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/spells"
)

// Gateway is the upstream read surface the assembler consumes.
type Gateway interface {
	ListClasses(ctx context.Context) ([]spells.Ref, error)
	ClassSpellCount(ctx context.Context, classIndex string) (int, error)
	ListClassSpells(ctx context.Context, classIndex string) ([]spells.Ref, error)
	GetSpell(ctx context.Context, spellIndex string) (spells.Spell, error)
}

// Cache lifetimes. The spell index changes rarely, so it outlives the
// assembled catalog.
const (
	IndexTTL   = 7 * 24 * time.Hour
	CatalogTTL = 24 * time.Hour
)

// Batch tuning per pipeline stage. Probes are cheap HEAD-like requests;
// index listings return large bodies, so they run smaller and slower.
var (
	probeOptions = batch.Options{BatchSize: 5, Delay: 300 * time.Millisecond}
	indexOptions = batch.Options{BatchSize: 3, Delay: 400 * time.Millisecond}
	spellOptions = batch.Options{BatchSize: batch.DefaultBatchSize, Delay: batch.DefaultDelay}
)

const (
	cacheKeyClasses = "classes"
	cacheKeyIndex   = "class-spell-index"
	cacheKeyCatalog = "catalog"
)

// Assembler builds spell catalogs from a gateway.
type Assembler struct {
	gateway Gateway
	cache   *gocache.Cache
	logger  *zerolog.Logger
}

// New creates an assembler over the given gateway.
func New(gateway Gateway) *Assembler {
	return &Assembler{
		gateway: gateway,
		cache:   gocache.New(CatalogTTL, 10*time.Minute),
		logger:  logging.Default(),
	}
}

// InvalidateCache drops all cached assembly results.
func (a *Assembler) InvalidateCache() {
	a.cache.Flush()
}

// SpellcastingClasses discovers the classes that can cast at least one
// spell. Each class is probed concurrently; a failed or zero-count
// probe excludes that class with a warning, never aborts discovery.
func (a *Assembler) SpellcastingClasses(ctx context.Context) ([]spells.Ref, error) {
	if cached, ok := a.cache.Get(cacheKeyClasses); ok {
		return cached.([]spells.Ref), nil
	}

	all, err := a.gateway.ListClasses(ctx)
	if err != nil {
		return nil, err
	}

	result, err := batch.Fetch(ctx, all,
		func(ctx context.Context, class spells.Ref) (spells.Ref, error) {
			count, err := a.gateway.ClassSpellCount(ctx, class.Index)
			if err != nil {
				return spells.Ref{}, err
			}
			if count == 0 {
				return spells.Ref{}, errors.ErrNotFound
			}
			return class, nil
		},
		probeOptions,
	)
	if err != nil {
		return nil, err
	}

	casters := result.Items
	a.logger.Info().
		Int("classes", len(all)).
		Int("spellcasting", len(casters)).
		Msg("Discovered spellcasting classes")

	a.cache.Set(cacheKeyClasses, casters, IndexTTL)
	return casters, nil
}

// ClassSpellIndex maps each spellcasting class index to its spell
// indexes. A class whose listing fails gets an empty list rather than
// poisoning the whole index.
func (a *Assembler) ClassSpellIndex(ctx context.Context) (map[string][]string, error) {
	if cached, ok := a.cache.Get(cacheKeyIndex); ok {
		return cached.(map[string][]string), nil
	}

	classes, err := a.SpellcastingClasses(ctx)
	if err != nil {
		return nil, err
	}

	type classSpells struct {
		class   string
		indexes []string
	}
	result, err := batch.Fetch(ctx, classes,
		func(ctx context.Context, class spells.Ref) (classSpells, error) {
			refs, err := a.gateway.ListClassSpells(ctx, class.Index)
			if err != nil {
				a.logger.Warn().Err(err).Str("class", class.Index).
					Msg("Class spell listing failed, using empty list")
				return classSpells{class: class.Index}, nil
			}
			indexes := make([]string, 0, len(refs))
			for _, ref := range refs {
				indexes = append(indexes, ref.Index)
			}
			return classSpells{class: class.Index, indexes: indexes}, nil
		},
		indexOptions,
	)
	if err != nil {
		return nil, err
	}

	index := make(map[string][]string, len(result.Items))
	for _, cs := range result.Items {
		if cs.indexes == nil {
			cs.indexes = []string{}
		}
		index[cs.class] = cs.indexes
	}

	a.cache.Set(cacheKeyIndex, index, IndexTTL)
	return index, nil
}

// SpellIndexes returns every distinct spell index across all classes,
// in deterministic order.
func (a *Assembler) SpellIndexes(ctx context.Context) ([]string, error) {
	index, err := a.ClassSpellIndex(ctx)
	if err != nil {
		return nil, err
	}
	return dedupe(index), nil
}

// GetSpell fetches one full spell record through the gateway.
func (a *Assembler) GetSpell(ctx context.Context, spellIndex string) (spells.Spell, error) {
	return a.gateway.GetSpell(ctx, spellIndex)
}

// AssembleAll materializes the complete catalog: every distinct spell
// across every spellcasting class, validated and locale-sorted by name.
// It fails with an assembly error only when zero classes were
// discovered or zero valid spells resulted; partial fetch failure is
// tolerated.
func (a *Assembler) AssembleAll(ctx context.Context) ([]spells.Spell, error) {
	if cached, ok := a.cache.Get(cacheKeyCatalog); ok {
		return cached.([]spells.Spell), nil
	}

	index, err := a.ClassSpellIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, errors.NewAssemblyError(0, 0, "no spellcasting classes discovered")
	}

	catalog, err := a.assemble(ctx, dedupe(index), spellOptions, nil)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, errors.NewAssemblyError(len(index), 0, "no valid spells assembled")
	}

	a.cache.Set(cacheKeyCatalog, catalog, CatalogTTL)
	return catalog, nil
}

// AssembleClass materializes one class's spells, invoking onBatch as
// each batch settles so a consumer can render incrementally. Results
// are not cached; the per-class listing already is.
func (a *Assembler) AssembleClass(ctx context.Context, classIndex string, onBatch func([]spells.Spell, batch.Progress)) ([]spells.Spell, error) {
	index, err := a.ClassSpellIndex(ctx)
	if err != nil {
		return nil, err
	}
	indexes, ok := index[classIndex]
	if !ok {
		return nil, errors.NewNotFoundError("class", classIndex)
	}
	return a.assemble(ctx, indexes, spellOptions, onBatch)
}

// assemble fetches full records for the given indexes, drops anything
// that fails validation, and returns the remainder sorted by name.
func (a *Assembler) assemble(ctx context.Context, indexes []string, opts batch.Options, onBatch func([]spells.Spell, batch.Progress)) ([]spells.Spell, error) {
	result, err := batch.FetchProgressive(ctx, indexes,
		func(ctx context.Context, index string) (spells.Spell, error) {
			s, err := a.gateway.GetSpell(ctx, index)
			if err != nil {
				return spells.Spell{}, err
			}
			clean, ok := spells.Sanitize(s)
			if !ok {
				return spells.Spell{}, errors.NewValidationError("spell", index, "invalid record")
			}
			return clean, nil
		},
		opts, onBatch,
	)
	if err != nil {
		return nil, err
	}
	if len(result.Failed) > 0 {
		a.logger.Warn().
			Int("failed", len(result.Failed)).
			Int("requested", len(indexes)).
			Msg("Some spells could not be assembled")
	}

	catalog := result.Items
	spells.SortByName(catalog)
	return catalog, nil
}

// dedupe flattens a class index into a sorted list of distinct spell
// indexes. Classes are visited in sorted order so the output is stable
// across runs.
func dedupe(index map[string][]string) []string {
	classes := make([]string, 0, len(index))
	for class := range index {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	seen := make(map[string]struct{})
	var out []string
	for _, class := range classes {
		for _, spellIndex := range index[class] {
			if _, dup := seen[spellIndex]; dup {
				continue
			}
			seen[spellIndex] = struct{}{}
			out = append(out, spellIndex)
		}
	}
	return out
}
