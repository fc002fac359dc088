// Package spells defines the spell data model shared by the catalog,
// search, and storage layers, along with validation and sanitization of
// records arriving from the upstream API or from durable local storage.
package spells

import (
	"encoding/json"
	"strings"
)

// Levels run from 0 (cantrip, unlimited use) through 9.
const (
	MinLevel = 0
	MaxLevel = 9
)

// Ref is a reference to a named upstream resource (class, school, subclass).
type Ref struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
}

// Spell is a single catalog record. The JSON field names follow the
// upstream wire format; the same layout is used in durable local storage,
// so they must not change.
type Spell struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	Level int    `json:"level"`

	School     *Ref  `json:"school,omitempty"`
	Classes    []Ref `json:"classes,omitempty"`
	Subclasses []Ref `json:"subclasses,omitempty"`

	// Descriptive fields, opaque to the core and passed through as-is.
	Desc          []string        `json:"desc,omitempty"`
	HigherLevel   []string        `json:"higher_level,omitempty"`
	Range         string          `json:"range,omitempty"`
	Components    []string        `json:"components,omitempty"`
	Material      string          `json:"material,omitempty"`
	Ritual        bool            `json:"ritual,omitempty"`
	Duration      string          `json:"duration,omitempty"`
	Concentration bool            `json:"concentration,omitempty"`
	CastingTime   string          `json:"casting_time,omitempty"`
	AttackType    string          `json:"attack_type,omitempty"`
	Damage        json.RawMessage `json:"damage,omitempty"`
	URL           string          `json:"url,omitempty"`

	// SessionID distinguishes multiple copies of the same spell in the
	// session deck. Empty everywhere else.
	SessionID string `json:"sessionId,omitempty"`
}

// Validate reports whether a spell satisfies the record invariants:
// non-empty index and name, level within [0, 9].
func Validate(s Spell) bool {
	if strings.TrimSpace(s.Index) == "" {
		return false
	}
	if strings.TrimSpace(s.Name) == "" {
		return false
	}
	if s.Level < MinLevel || s.Level > MaxLevel {
		return false
	}
	return true
}

// Sanitize validates a spell and returns it unchanged when valid.
// Sanitize is a fixed point: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s Spell) (Spell, bool) {
	if !Validate(s) {
		return Spell{}, false
	}
	return s, true
}

// Decode parses a raw JSON value into a Spell and validates it. It is
// tolerant of unknown fields and rejects records whose required fields
// are missing, mistyped, or out of range.
func Decode(raw json.RawMessage) (Spell, bool) {
	var s Spell
	if err := json.Unmarshal(raw, &s); err != nil {
		return Spell{}, false
	}
	return Sanitize(s)
}

// SanitizeAll maps Sanitize over a slice and drops invalid records.
func SanitizeAll(list []Spell) []Spell {
	out := make([]Spell, 0, len(list))
	for _, s := range list {
		if clean, ok := Sanitize(s); ok {
			out = append(out, clean)
		}
	}
	return out
}

// DecodeAll maps Decode over raw JSON values and drops invalid records.
func DecodeAll(raw []json.RawMessage) []Spell {
	out := make([]Spell, 0, len(raw))
	for _, r := range raw {
		if s, ok := Decode(r); ok {
			out = append(out, s)
		}
	}
	return out
}

// ClassNames returns the names of the classes that can use this spell.
func (s Spell) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for _, c := range s.Classes {
		names = append(names, c.Name)
	}
	return names
}

// SchoolName returns the magic school name, or "" when absent.
func (s Spell) SchoolName() string {
	if s.School == nil {
		return ""
	}
	return s.School.Name
}
