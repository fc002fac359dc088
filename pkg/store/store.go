// Package store persists the three named collections as one JSON file per
// key under the user's data directory. Reads are forgiving: a missing,
// corrupt, or mis-shaped file yields a fresh empty record rather than an
// error, and every item passes sanitization before it reaches a consumer.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/errors"
	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/spells"
)

// Key names a persisted collection.
type Key string

// The three collection keys. The on-disk names are part of the storage
// contract and must not change.
const (
	KeySpellbook Key = "user-spellbook"
	KeyDeck      Key = "session-deck"
	KeyDaily     Key = "daily-spells"
)

// Keys lists all collection keys in display order.
func Keys() []Key {
	return []Key{KeySpellbook, KeyDeck, KeyDaily}
}

// Record is the persisted shape of a collection.
type Record struct {
	Items         []spells.Spell `json:"items"`
	GeneratedDate *string        `json:"generatedDate,omitempty"`
	LastModified  utc.Time       `json:"lastModified"`
}

// rawRecord defers item decoding so one malformed item does not
// invalidate the rest of the record.
type rawRecord struct {
	Items         []json.RawMessage `json:"items"`
	GeneratedDate *string           `json:"generatedDate"`
	LastModified  utc.Time          `json:"lastModified"`
}

// EmptyRecord returns a fresh default record stamped now.
func EmptyRecord() Record {
	return Record{Items: []spells.Spell{}, LastModified: utc.Now()}
}

// Store reads and writes collection records in a single directory.
type Store struct {
	dir    string
	logger *zerolog.Logger
}

// DefaultDir returns the platform data directory for collection files.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "grimoire")
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Store{dir: dir, logger: logging.Default()}, nil
}

// Dir returns the directory holding the collection files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.dir, string(key)+".json")
}

// Load returns the record stored under key. It never fails: a missing
// file, unreadable JSON, or a mis-shaped document all produce a fresh
// empty record, and individually malformed items are dropped.
func (s *Store) Load(key Key) Record {
	rec, _ := s.load(key)
	return rec
}

// load reports whether the on-disk document was well formed, which
// Initialize uses to decide when to reseed.
func (s *Store) load(key Key) (Record, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("key", string(key)).
				Msg("Failed to read collection, using empty default")
		}
		return EmptyRecord(), false
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil || raw.Items == nil {
		s.logger.Warn().Str("key", string(key)).
			Msg("Malformed collection document, using empty default")
		return EmptyRecord(), false
	}

	rec := Record{
		Items:         spells.DecodeAll(raw.Items),
		GeneratedDate: raw.GeneratedDate,
		LastModified:  raw.LastModified,
	}
	return rec, true
}

// Save writes the record under key, stamping lastModified. Writes go to
// a temp file first and are renamed into place, so a concurrent reader
// never observes a torn document. Failures are logged and reported as
// false, never panicked.
func (s *Store) Save(key Key, rec Record) bool {
	if rec.Items == nil {
		rec.Items = []spells.Spell{}
	}
	rec.LastModified = utc.Now()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.logSaveError(key, "serialize", err)
		return false
	}

	tmp, err := os.CreateTemp(s.dir, string(key)+"-*.tmp")
	if err != nil {
		s.logSaveError(key, "create", err)
		return false
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.logSaveError(key, "write", err)
		return false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		s.logSaveError(key, "close", err)
		return false
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		s.logSaveError(key, "rename", err)
		return false
	}
	return true
}

func (s *Store) logSaveError(key Key, op string, err error) {
	serr := errors.NewStorageError(op, string(key), err)
	s.logger.Error().Err(serr).Str("key", string(key)).
		Msg("Failed to save collection")
}

// Delete removes the file stored under a key name. Missing files are
// not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, name+".json"))
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", name, err)
	}
	return nil
}

// Initialize seeds a fresh empty record for any collection key whose
// on-disk document is absent or mis-shaped. Well-formed records are left
// untouched, so it is safe to call on every start.
func (s *Store) Initialize() {
	for _, key := range Keys() {
		if _, ok := s.load(key); ok {
			continue
		}
		if s.Save(key, EmptyRecord()) {
			s.logger.Info().Str("key", string(key)).
				Msg("Initialized empty collection")
		}
	}
}

// KeyForFile maps a file name in the data directory back to its
// collection key. Unrelated files report false.
func KeyForFile(name string) (Key, bool) {
	for _, key := range Keys() {
		if name == string(key)+".json" {
			return key, true
		}
	}
	return "", false
}
