package spells

import (
	"fmt"
	"math/rand"
	"time"
)

// NewSessionID returns a session instance identifier in the form
// {unix-millis}_{random}. Uniqueness is good enough for distinguishing
// deck copies, not cryptographically guaranteed.
func NewSessionID() string {
	return fmt.Sprintf("%d_%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// WithSessionID returns a copy of the spell carrying a fresh session
// instance identifier.
func WithSessionID(s Spell) Spell {
	s.SessionID = NewSessionID()
	return s
}

// StripSessionID returns a copy of the spell without a session instance
// identifier, for moving a deck copy back into the spellbook.
func StripSessionID(s Spell) Spell {
	s.SessionID = ""
	return s
}
