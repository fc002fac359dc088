package catalog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/grimoire/pkg/batch"
	"github.com/agentstation/grimoire/pkg/catalog"
	"github.com/agentstation/grimoire/pkg/errors"
	"github.com/agentstation/grimoire/pkg/spells"
)

// fakeGateway serves a small in-memory class and spell universe.
type fakeGateway struct {
	mu          sync.Mutex
	classes     []spells.Ref
	classSpells map[string][]string
	spellNames  map[string]string
	probeErr    map[string]error
	listErr     map[string]error
	spellErr    map[string]error
	spellCalls  int
	classCalls  int
}

func (g *fakeGateway) ListClasses(context.Context) ([]spells.Ref, error) {
	g.mu.Lock()
	g.classCalls++
	g.mu.Unlock()
	return g.classes, nil
}

func (g *fakeGateway) ClassSpellCount(_ context.Context, class string) (int, error) {
	if err := g.probeErr[class]; err != nil {
		return 0, err
	}
	return len(g.classSpells[class]), nil
}

func (g *fakeGateway) ListClassSpells(_ context.Context, class string) ([]spells.Ref, error) {
	if err := g.listErr[class]; err != nil {
		return nil, err
	}
	refs := make([]spells.Ref, 0, len(g.classSpells[class]))
	for _, index := range g.classSpells[class] {
		refs = append(refs, spells.Ref{Index: index, Name: g.spellNames[index]})
	}
	return refs, nil
}

func (g *fakeGateway) GetSpell(_ context.Context, index string) (spells.Spell, error) {
	g.mu.Lock()
	g.spellCalls++
	g.mu.Unlock()
	if err := g.spellErr[index]; err != nil {
		return spells.Spell{}, err
	}
	name, ok := g.spellNames[index]
	if !ok {
		return spells.Spell{}, errors.NewNotFoundError("spell", index)
	}
	return spells.Spell{Index: index, Name: name, Level: 1}, nil
}

func ref(index, name string) spells.Ref {
	return spells.Ref{Index: index, Name: name}
}

// defaultGateway: wizard and cleric overlap on two spells, fighter has
// none.
func defaultGateway() *fakeGateway {
	return &fakeGateway{
		classes: []spells.Ref{
			ref("wizard", "Wizard"),
			ref("cleric", "Cleric"),
			ref("fighter", "Fighter"),
		},
		classSpells: map[string][]string{
			"wizard": {"fireball", "shield", "bless", "mage-armor", "wish"},
			"cleric": {"bless", "cure-wounds", "shield", "guidance", "aid"},
		},
		spellNames: map[string]string{
			"fireball": "Fireball", "shield": "Shield", "bless": "Bless",
			"mage-armor": "Mage Armor", "wish": "Wish",
			"cure-wounds": "Cure Wounds", "guidance": "Guidance", "aid": "Aid",
		},
	}
}

func TestSpellcastingClasses(t *testing.T) {
	t.Run("zero-spell classes excluded", func(t *testing.T) {
		a := catalog.New(defaultGateway())
		classes, err := a.SpellcastingClasses(context.Background())
		require.NoError(t, err)
		require.Len(t, classes, 2)
		for _, c := range classes {
			assert.NotEqual(t, "fighter", c.Index)
		}
	})

	t.Run("failed probe excludes class only", func(t *testing.T) {
		g := defaultGateway()
		g.probeErr = map[string]error{"cleric": fmt.Errorf("probe failed")}
		a := catalog.New(g)

		classes, err := a.SpellcastingClasses(context.Background())
		require.NoError(t, err)
		require.Len(t, classes, 1)
		assert.Equal(t, "wizard", classes[0].Index)
	})
}

func TestClassSpellIndex(t *testing.T) {
	t.Run("failed listing yields empty list", func(t *testing.T) {
		g := defaultGateway()
		g.listErr = map[string]error{"cleric": fmt.Errorf("listing failed")}
		a := catalog.New(g)

		index, err := a.ClassSpellIndex(context.Background())
		require.NoError(t, err)
		assert.Len(t, index["wizard"], 5)
		require.Contains(t, index, "cleric")
		assert.Empty(t, index["cleric"])
	})

	t.Run("cached across calls", func(t *testing.T) {
		g := defaultGateway()
		a := catalog.New(g)

		_, err := a.ClassSpellIndex(context.Background())
		require.NoError(t, err)
		callsAfterFirst := g.classCalls

		_, err = a.ClassSpellIndex(context.Background())
		require.NoError(t, err)
		assert.Equal(t, callsAfterFirst, g.classCalls)
	})
}

func TestAssembleAll(t *testing.T) {
	t.Run("dedupes across classes", func(t *testing.T) {
		a := catalog.New(defaultGateway())
		all, err := a.AssembleAll(context.Background())
		require.NoError(t, err)

		// 5 + 5 with two overlapping indexes.
		assert.Len(t, all, 8)
		seen := map[string]bool{}
		for _, s := range all {
			assert.False(t, seen[s.Index], "duplicate %s", s.Index)
			seen[s.Index] = true
		}
	})

	t.Run("sorted by name", func(t *testing.T) {
		a := catalog.New(defaultGateway())
		all, err := a.AssembleAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Aid", all[0].Name)
		assert.Equal(t, "Wish", all[len(all)-1].Name)
	})

	t.Run("partial fetch failure tolerated", func(t *testing.T) {
		g := defaultGateway()
		g.spellErr = map[string]error{"wish": fmt.Errorf("fetch failed")}
		a := catalog.New(g)

		all, err := a.AssembleAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 7)
	})

	t.Run("zero classes is an assembly error", func(t *testing.T) {
		g := &fakeGateway{classes: []spells.Ref{ref("fighter", "Fighter")}}
		a := catalog.New(g)

		_, err := a.AssembleAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsAssemblyError(err))
	})

	t.Run("zero valid spells is an assembly error", func(t *testing.T) {
		g := defaultGateway()
		g.spellErr = map[string]error{}
		for index := range g.spellNames {
			g.spellErr[index] = fmt.Errorf("down")
		}
		a := catalog.New(g)

		_, err := a.AssembleAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsAssemblyError(err))
	})

	t.Run("second call served from cache", func(t *testing.T) {
		g := defaultGateway()
		a := catalog.New(g)

		_, err := a.AssembleAll(context.Background())
		require.NoError(t, err)
		callsAfterFirst := g.spellCalls

		again, err := a.AssembleAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, again, 8)
		assert.Equal(t, callsAfterFirst, g.spellCalls)
	})
}

func TestAssembleClass(t *testing.T) {
	t.Run("progressive batches", func(t *testing.T) {
		a := catalog.New(defaultGateway())

		var progress []batch.Progress
		result, err := a.AssembleClass(context.Background(), "wizard",
			func(_ []spells.Spell, p batch.Progress) {
				progress = append(progress, p)
			})
		require.NoError(t, err)
		assert.Len(t, result, 5)
		require.NotEmpty(t, progress)
		assert.True(t, progress[len(progress)-1].Complete)
	})

	t.Run("unknown class", func(t *testing.T) {
		a := catalog.New(defaultGateway())
		_, err := a.AssembleClass(context.Background(), "bard", nil)
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestSpellIndexes(t *testing.T) {
	a := catalog.New(defaultGateway())
	indexes, err := a.SpellIndexes(context.Background())
	require.NoError(t, err)
	assert.Len(t, indexes, 8)
}
