package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/grimoire/pkg/spells"
)

// Legacy key names from earlier releases. Session-like keys are folded
// into the deck; cache-like keys are simply removed.
var (
	legacySessionKeys = []string{"session", "user-session"}
	legacyCacheKeys   = []string{"spells", "spell-cache", "class-spells"}
)

// legacyKeys returns every historical key name, session-like first.
func legacyKeys() []string {
	return append(append([]string{}, legacySessionKeys...), legacyCacheKeys...)
}

// MigrationResult reports what a migration run did.
type MigrationResult struct {
	Performed     bool     `json:"performed"`
	MigratedItems int      `json:"migratedItems"`
	RemovedKeys   []string `json:"removedKeys"`
	Errors        []string `json:"errors"`
}

// MigrationNeeded reports whether legacy data exists that has not yet
// been folded into the current layout: the deck key is absent or empty
// and at least one legacy key is present.
func (s *Store) MigrationNeeded() bool {
	if rec, ok := s.load(KeyDeck); ok && len(rec.Items) > 0 {
		return false
	}
	for _, name := range legacyKeys() {
		if _, err := os.Stat(filepath.Join(s.dir, name+".json")); err == nil {
			return true
		}
	}
	return false
}

// Migrate folds legacy session data into the deck key and removes all
// legacy files. Every migrated item receives a fresh session ID. Legacy
// files are deleted only after the new record is written, so a failed
// write loses nothing. Running Migrate twice is a no-op the second time.
func (s *Store) Migrate() MigrationResult {
	var result MigrationResult

	if !s.MigrationNeeded() {
		s.logger.Debug().Msg("No migration needed")
		return result
	}
	result.Performed = true

	migrated := s.readLegacySession()
	rec := EmptyRecord()
	rec.Items = migrated

	if !s.Save(KeyDeck, rec) {
		result.Errors = append(result.Errors, "failed to write migrated deck record")
		return result
	}
	result.MigratedItems = len(migrated)

	for _, name := range legacyKeys() {
		path := filepath.Join(s.dir, name+".json")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("key", name).
				Msg("Failed to remove legacy key")
			result.Errors = append(result.Errors, name+": "+err.Error())
			continue
		}
		result.RemovedKeys = append(result.RemovedKeys, name)
	}

	s.logger.Info().
		Int("items", result.MigratedItems).
		Strs("removed", result.RemovedKeys).
		Msg("Migration complete")
	return result
}

// readLegacySession loads the first legacy session key that holds data
// and normalizes it. Later keys are ignored once one matches.
func (s *Store) readLegacySession() []spells.Spell {
	for _, name := range legacySessionKeys {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
		if err != nil {
			continue
		}
		items := decodeLegacy(data)
		if len(items) == 0 {
			continue
		}
		s.logger.Info().Str("key", name).Int("items", len(items)).
			Msg("Found legacy session data")

		out := make([]spells.Spell, 0, len(items))
		for _, item := range items {
			sp, ok := spells.Decode(item)
			if !ok {
				s.logger.Warn().Msg("Skipped invalid item during migration")
				continue
			}
			out = append(out, spells.WithSessionID(sp))
		}
		return out
	}
	return nil
}

// decodeLegacy extracts the item array from any historical document
// shape: a bare array, or an object with a spells, sessionSpells, or
// data field.
func decodeLegacy(data []byte) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		return items
	}

	var wrapped struct {
		Spells        []json.RawMessage `json:"spells"`
		SessionSpells []json.RawMessage `json:"sessionSpells"`
		Data          []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil
	}
	switch {
	case wrapped.Spells != nil:
		return wrapped.Spells
	case wrapped.SessionSpells != nil:
		return wrapped.SessionSpells
	case wrapped.Data != nil:
		return wrapped.Data
	}
	return nil
}
