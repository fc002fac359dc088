package daily_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/grimoire/pkg/daily"
	"github.com/agentstation/grimoire/pkg/events"
	"github.com/agentstation/grimoire/pkg/spells"
	"github.com/agentstation/grimoire/pkg/store"
)

type fakeSource struct {
	mu      sync.Mutex
	indexes []string
	broken  map[string]bool
	fetches int
	block   chan struct{}
}

func (f *fakeSource) SpellIndexes(context.Context) ([]string, error) {
	return f.indexes, nil
}

func (f *fakeSource) GetSpell(_ context.Context, index string) (spells.Spell, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.broken[index] {
		return spells.Spell{}, fmt.Errorf("fetch %s: boom", index)
	}
	return spells.Spell{Index: index, Name: "Spell " + index, Level: 1}, nil
}

func pool(n int) []string {
	indexes := make([]string, n)
	for i := range indexes {
		indexes[i] = fmt.Sprintf("spell-%02d", i)
	}
	return indexes
}

func newGenerator(t *testing.T, source daily.Source) (*daily.Generator, *store.Store, *events.Bus) {
	t.Helper()
	s, err := store.New(t.TempDir())
	require.NoError(t, err)
	bus := events.NewBus()
	return daily.NewGenerator(s, bus, source), s, bus
}

func TestStampFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), daily.Stamp())
}

func TestNeedsRefresh(t *testing.T) {
	assert.True(t, daily.NeedsRefresh(nil))

	stale := "2001-01-01"
	assert.True(t, daily.NeedsRefresh(&stale))

	today := daily.Stamp()
	assert.False(t, daily.NeedsRefresh(&today))
}

func TestRefreshGeneratesFullSample(t *testing.T) {
	gen, s, _ := newGenerator(t, &fakeSource{indexes: pool(40)})

	rec, refreshed, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Len(t, rec.Items, daily.SampleSize)
	require.NotNil(t, rec.GeneratedDate)
	assert.Equal(t, daily.Stamp(), *rec.GeneratedDate)

	// No duplicate draws.
	seen := map[string]bool{}
	for _, item := range rec.Items {
		assert.False(t, seen[item.Index], "duplicate %s", item.Index)
		seen[item.Index] = true
	}

	assert.Len(t, s.Load(store.KeyDaily).Items, daily.SampleSize)
}

func TestRefreshSameDayIsNoop(t *testing.T) {
	source := &fakeSource{indexes: pool(40)}
	gen, _, _ := newGenerator(t, source)

	_, refreshed, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)
	require.True(t, refreshed)
	fetchesAfterFirst := source.fetches

	_, refreshed, err = gen.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, fetchesAfterFirst, source.fetches)
}

func TestRefreshForce(t *testing.T) {
	gen, _, _ := newGenerator(t, &fakeSource{indexes: pool(40)})

	_, _, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)

	_, refreshed, err := gen.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestRefreshSkipsBrokenCandidates(t *testing.T) {
	source := &fakeSource{
		indexes: pool(20),
		broken:  map[string]bool{"spell-03": true, "spell-11": true},
	}
	gen, _, _ := newGenerator(t, source)

	rec, _, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, rec.Items, daily.SampleSize)
	for _, item := range rec.Items {
		assert.NotEqual(t, "spell-03", item.Index)
		assert.NotEqual(t, "spell-11", item.Index)
	}
}

func TestRefreshExhaustedPoolStoresEmpty(t *testing.T) {
	gen, s, _ := newGenerator(t, &fakeSource{indexes: pool(5)})

	rec, refreshed, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, refreshed)

	// Never a partial sample: the stored length is 0 or exactly 12.
	assert.Empty(t, rec.Items)
	assert.Empty(t, s.Load(store.KeyDaily).Items)
}

func TestRefreshSingleFlight(t *testing.T) {
	source := &fakeSource{indexes: pool(40), block: make(chan struct{})}
	gen, _, _ := newGenerator(t, source)

	started := make(chan struct{})
	go func() {
		close(started)
		gen.Refresh(context.Background(), true)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	// Second call while the first is blocked inside the source.
	_, refreshed, err := gen.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, refreshed)

	close(source.block)
}

func TestRefreshPublishes(t *testing.T) {
	gen, _, bus := newGenerator(t, &fakeSource{indexes: pool(40)})

	ch, unsub := bus.Subscribe(events.TopicDailyUpdated)
	defer unsub()

	_, _, err := gen.Refresh(context.Background(), false)
	require.NoError(t, err)

	select {
	case msg := <-ch:
		assert.Len(t, msg.Items, daily.SampleSize)
	case <-time.After(time.Second):
		t.Fatal("no daily.updated event")
	}
}
