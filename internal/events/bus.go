/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventPlaylistCreated EventType = "playlist.created"
	EventPlaylistUpdated EventType = "playlist.updated"
	EventPlaylistDeleted EventType = "playlist.deleted"

	EventSmartPlaylistCreated   EventType = "smart_playlist.created"
	EventSmartPlaylistUpdated   EventType = "smart_playlist.updated"
	EventSmartPlaylistDeleted   EventType = "smart_playlist.deleted"
	EventSmartPlaylistRefreshed EventType = "smart_playlist.refreshed"

	// Cache invalidation events
	EventEpisodeUpdated EventType = "cache.episode_updated"
	EventCatalogChanged EventType = "cache.catalog_changed"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Publisher is the write side of a bus. Distributed buses satisfy it too.
type Publisher interface {
	Publish(eventType EventType, payload Payload)
}

// PubSub is the full bus contract shared by the in-process bus and the
// distributed implementations.
type PubSub interface {
	Publisher
	Subscribe(eventType EventType) Subscriber
	Unsubscribe(eventType EventType, sub Subscriber)
}

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers. Slow subscribers drop payloads
// rather than blocking the publisher.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.subs[eventType] = subs
	close(sub)
}
