package spells

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// LevelOrder returns the display order of level labels.
func LevelOrder() []string {
	return []string{
		"Cantrips",
		"Level 1", "Level 2", "Level 3", "Level 4", "Level 5",
		"Level 6", "Level 7", "Level 8", "Level 9",
	}
}

// LevelLabel returns the display label for a spell level.
func LevelLabel(level int) string {
	if level == 0 {
		return "Cantrips"
	}
	if level >= MinLevel && level <= MaxLevel {
		return fmt.Sprintf("Level %d", level)
	}
	return "Unknown Level"
}

// IsCantrip reports whether the spell is a level-0 (unlimited use) spell.
func IsCantrip(s Spell) bool {
	return s.Level == 0
}

// Group is a set of spells sharing a level, sorted by name.
type Group struct {
	Label  string
	Spells []Spell
	Count  int
}

// SortByName sorts spells in place by display name using locale-aware
// comparison.
func SortByName(list []Spell) {
	c := collate.New(language.English, collate.Loose)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Name, list[j].Name) < 0
	})
}

// GroupByLevel groups spells by level label, each group sorted by name.
func GroupByLevel(list []Spell) map[string][]Spell {
	grouped := make(map[string][]Spell)
	for _, s := range list {
		if s.Level < MinLevel || s.Level > MaxLevel {
			continue
		}
		label := LevelLabel(s.Level)
		grouped[label] = append(grouped[label], s)
	}
	for label := range grouped {
		SortByName(grouped[label])
	}
	return grouped
}

// OrderedGroups returns the non-empty level groups in display order.
func OrderedGroups(list []Spell) []Group {
	grouped := GroupByLevel(list)
	groups := make([]Group, 0, len(grouped))
	for _, label := range LevelOrder() {
		if members, ok := grouped[label]; ok && len(members) > 0 {
			groups = append(groups, Group{Label: label, Spells: members, Count: len(members)})
		}
	}
	return groups
}

// CountByLevel returns the number of spells per level label, including
// zero counts for empty levels.
func CountByLevel(list []Spell) map[string]int {
	counts := make(map[string]int, len(LevelOrder()))
	for _, label := range LevelOrder() {
		counts[label] = 0
	}
	for _, s := range list {
		if s.Level < MinLevel || s.Level > MaxLevel {
			continue
		}
		counts[LevelLabel(s.Level)]++
	}
	return counts
}
