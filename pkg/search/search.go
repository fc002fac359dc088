// Package search provides the in-memory fuzzy index over an assembled
// catalog. The index is built once per catalog and queried per
// keystroke; queries never touch the network.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/agentstation/grimoire/pkg/spells"
)

// MinTermLength is the shortest query that runs; anything shorter
// returns no results.
const MinTermLength = 2

// MaxResults caps how many matches a single query returns.
const MaxResults = 100

// Field weights. Name dominates; prose matches barely nudge the score.
const (
	weightName   = 0.40
	weightClass  = 0.25
	weightLevel  = 0.15
	weightSchool = 0.10
	weightDesc   = 0.05
)

type field struct {
	weight float64
	docs   []string
}

// Index is a prepared fuzzy-search structure over a fixed spell list.
// Build a new one whenever the underlying list changes.
type Index struct {
	spells []spells.Spell
	fields []field
}

// Result pairs a matched spell with its relevance score.
type Result struct {
	Spell spells.Spell
	Score float64
}

// New builds an index over the given spells. The per-field documents
// are computed once here so Search does no string assembly.
func New(list []spells.Spell) *Index {
	idx := &Index{spells: list}

	names := make([]string, len(list))
	classes := make([]string, len(list))
	levels := make([]string, len(list))
	schools := make([]string, len(list))
	descs := make([]string, len(list))
	for i, s := range list {
		names[i] = strings.ToLower(s.Name)
		classes[i] = strings.ToLower(strings.Join(s.ClassNames(), " "))
		levels[i] = levelToken(s.Level)
		schools[i] = strings.ToLower(s.SchoolName())
		descs[i] = strings.ToLower(strings.Join(s.Desc, " "))
	}

	idx.fields = []field{
		{weightName, names},
		{weightClass, classes},
		{weightLevel, levels},
		{weightSchool, schools},
		{weightDesc, descs},
	}
	return idx
}

// levelToken synthesizes a searchable token for a spell level, so
// queries like "cantrip" or "level 3" land on the right spells.
func levelToken(level int) string {
	if level == 0 {
		return "cantrip level0 0"
	}
	return "level" + strconv.Itoa(level) + " " + strconv.Itoa(level)
}

// Search runs a fuzzy query against the index. Terms shorter than
// MinTermLength return nil. Each spell scores by its best-matching
// field, weighted; weak matches are discarded and at most MaxResults
// are returned, best first, original catalog order breaking ties.
func (idx *Index) Search(term string) []Result {
	term = strings.ToLower(strings.TrimSpace(term))
	if len(term) < MinTermLength {
		return nil
	}

	best := make(map[int]float64)
	for _, f := range idx.fields {
		for _, m := range fuzzy.Find(term, f.docs) {
			if m.Score <= 0 {
				continue
			}
			score := float64(m.Score) * f.weight
			if score > best[m.Index] {
				best[m.Index] = score
			}
		}
	}
	if len(best) == 0 {
		return nil
	}

	positions := make([]int, 0, len(best))
	for i := range best {
		positions = append(positions, i)
	}
	sort.Slice(positions, func(a, b int) bool {
		if best[positions[a]] != best[positions[b]] {
			return best[positions[a]] > best[positions[b]]
		}
		// Catalog order is the stable tiebreak.
		return positions[a] < positions[b]
	})

	if len(positions) > MaxResults {
		positions = positions[:MaxResults]
	}
	results := make([]Result, len(positions))
	for i, pos := range positions {
		results[i] = Result{Spell: idx.spells[pos], Score: best[pos]}
	}
	return results
}

// Spells returns the underlying catalog the index was built over.
func (idx *Index) Spells() []spells.Spell {
	return idx.spells
}
