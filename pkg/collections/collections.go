// Package collections implements the mutators for the three named
// collections. Mutators never panic for expected failures: every
// operation returns a structured result, and a storage failure is
// reported, not thrown. Successful mutations publish to the event bus.
package collections

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/events"
	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/spells"
	"github.com/agentstation/grimoire/pkg/store"
)

// Result is the outcome of a collection mutation. Items holds the
// post-mutation collection state when the operation succeeded.
type Result struct {
	OK        bool           `json:"success"`
	Message   string         `json:"message"`
	Items     []spells.Spell `json:"items,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Manager mutates collections through the store and announces changes
// on the bus.
type Manager struct {
	store  *store.Store
	bus    *events.Bus
	logger *zerolog.Logger
}

// NewManager creates a collection manager.
func NewManager(s *store.Store, bus *events.Bus) *Manager {
	return &Manager{store: s, bus: bus, logger: logging.Default()}
}

// Spellbook returns the current spellbook contents.
func (m *Manager) Spellbook() []spells.Spell {
	return m.store.Load(store.KeySpellbook).Items
}

// Deck returns the current session deck contents.
func (m *Manager) Deck() []spells.Spell {
	return m.store.Load(store.KeyDeck).Items
}

// Daily returns the current daily selection contents.
func (m *Manager) Daily() []spells.Spell {
	return m.store.Load(store.KeyDaily).Items
}

// AddToSpellbook appends a spell to the spellbook. Duplicates by index
// are rejected without a write.
func (m *Manager) AddToSpellbook(s spells.Spell) Result {
	clean, ok := spells.Sanitize(s)
	if !ok {
		return failure("%q is not a valid spell", s.Name)
	}

	rec := m.store.Load(store.KeySpellbook)
	for _, existing := range rec.Items {
		if existing.Index == clean.Index {
			return failure("%s is already in your spellbook", clean.Name)
		}
	}

	rec.Items = append(rec.Items, clean)
	if !m.store.Save(store.KeySpellbook, rec) {
		return failure("failed to save spellbook")
	}

	m.bus.Publish(events.TopicSpellbookAdded, rec.Items)
	m.bus.Publish(events.TopicSpellbookUpdated, rec.Items)
	return Result{OK: true, Message: fmt.Sprintf("Added %s to spellbook", clean.Name), Items: rec.Items}
}

// RemoveFromSpellbook removes a spell by index.
func (m *Manager) RemoveFromSpellbook(index string) Result {
	rec := m.store.Load(store.KeySpellbook)

	kept := make([]spells.Spell, 0, len(rec.Items))
	var removed *spells.Spell
	for _, existing := range rec.Items {
		if existing.Index == index && removed == nil {
			s := existing
			removed = &s
			continue
		}
		kept = append(kept, existing)
	}
	if removed == nil {
		return failure("%s is not in your spellbook", index)
	}

	rec.Items = kept
	if !m.store.Save(store.KeySpellbook, rec) {
		return failure("failed to save spellbook")
	}

	m.bus.Publish(events.TopicSpellbookRemoved, rec.Items)
	m.bus.Publish(events.TopicSpellbookUpdated, rec.Items)
	return Result{OK: true, Message: fmt.Sprintf("Removed %s from spellbook", removed.Name), Items: rec.Items}
}

// AddToDeck appends a spell to the session deck. Duplicates by index
// are allowed; each insertion receives a fresh session ID that
// distinguishes the copies.
func (m *Manager) AddToDeck(s spells.Spell) Result {
	clean, ok := spells.Sanitize(s)
	if !ok {
		return failure("%q is not a valid spell", s.Name)
	}
	clean = spells.WithSessionID(clean)

	rec := m.store.Load(store.KeyDeck)
	rec.Items = append(rec.Items, clean)
	if !m.store.Save(store.KeyDeck, rec) {
		return failure("failed to save session deck")
	}

	m.bus.Publish(events.TopicDeckAdded, rec.Items)
	m.bus.Publish(events.TopicDeckUpdated, rec.Items)
	return Result{
		OK:        true,
		Message:   fmt.Sprintf("Added %s to deck", clean.Name),
		Items:     rec.Items,
		SessionID: clean.SessionID,
	}
}

// RemoveFromDeck removes the single deck entry carrying sessionID.
// Level policy is not enforced here; a caller that forbids burning
// unlimited-use entries must check before invoking.
func (m *Manager) RemoveFromDeck(sessionID string) Result {
	rec := m.store.Load(store.KeyDeck)

	kept := make([]spells.Spell, 0, len(rec.Items))
	var removed *spells.Spell
	for _, existing := range rec.Items {
		if existing.SessionID == sessionID && removed == nil {
			s := existing
			removed = &s
			continue
		}
		kept = append(kept, existing)
	}
	if removed == nil {
		return failure("no deck entry with session id %s", sessionID)
	}

	rec.Items = kept
	if !m.store.Save(store.KeyDeck, rec) {
		return failure("failed to save session deck")
	}

	m.bus.Publish(events.TopicDeckBurned, rec.Items)
	m.bus.Publish(events.TopicDeckUpdated, rec.Items)
	return Result{OK: true, Message: fmt.Sprintf("Burned %s", removed.Name), Items: rec.Items}
}

// Clear empties a collection.
func (m *Manager) Clear(key store.Key) Result {
	if !m.store.Save(key, store.EmptyRecord()) {
		return failure("failed to clear %s", key)
	}

	switch key {
	case store.KeyDeck:
		m.bus.Publish(events.TopicDeckCleared, nil)
		m.bus.Publish(events.TopicDeckUpdated, nil)
	case store.KeySpellbook:
		m.bus.Publish(events.TopicSpellbookUpdated, nil)
	case store.KeyDaily:
		m.bus.Publish(events.TopicDailyUpdated, nil)
	}
	return Result{OK: true, Message: fmt.Sprintf("Cleared %s", key), Items: []spells.Spell{}}
}
