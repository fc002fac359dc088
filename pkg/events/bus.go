// Package events provides the in-process publish/subscribe channel that
// keeps independent views of the same collection consistent without a
// reload. Delivery is best-effort: a subscriber that cannot keep up has
// messages dropped rather than blocking the writer.
package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/spells"
)

// Topic identifies a collection-changed condition.
type Topic string

// Topics published by the collection mutators and the daily generator.
const (
	TopicSpellbookUpdated Topic = "spellbook.updated"
	TopicSpellbookAdded   Topic = "spellbook.added"
	TopicSpellbookRemoved Topic = "spellbook.removed"
	TopicDeckUpdated      Topic = "deck.updated"
	TopicDeckAdded        Topic = "deck.added"
	TopicDeckBurned       Topic = "deck.burned"
	TopicDeckCleared      Topic = "deck.cleared"
	TopicDailyUpdated     Topic = "daily.updated"
)

// Message carries the post-mutation state of a collection.
type Message struct {
	Topic Topic
	Items []spells.Spell
}

// subscriberBuffer is the per-subscriber channel depth. Mutations are
// human-paced, so a small buffer absorbs any realistic burst.
const subscriberBuffer = 16

type subscriber struct {
	topic Topic
	ch    chan Message
}

// Bus fans messages out to topic subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscriber
	logger *zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{logger: logging.Default()}
}

// Subscribe registers interest in a topic. It returns a receive channel
// and an unsubscribe function; the channel is closed on unsubscribe.
func (b *Bus) Subscribe(topic Topic) (<-chan Message, func()) {
	sub := &subscriber{topic: topic, ch: make(chan Message, subscriberBuffer)}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			for i, s := range b.subs {
				if s == sub {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, unsubscribe
}

// Publish delivers a message to every subscriber of the topic. A full
// subscriber channel drops the message.
func (b *Bus) Publish(topic Topic, items []spells.Spell) {
	msg := Message{Topic: topic, Items: items}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn().
				Str("topic", string(topic)).
				Msg("Subscriber channel full, event dropped")
		}
	}
}

// SubscriberCount returns the current number of subscribers across all
// topics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
