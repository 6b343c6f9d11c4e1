// Package bus is an in-process publish/subscribe channel for state changes.
//
// Views subscribe when they attach and Close their Subscription when they
// detach; publishers never learn who is listening.
package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/podcatch/internal/domain"
)

// Handler receives a change notification
type Handler func(domain.Change)

// Bus delivers each published change to every live subscriber of its topic.
// Handlers run synchronously on the publishing goroutine.
type Bus struct {
	mu     sync.Mutex
	subs   map[domain.Topic][]*Subscription
	logger *slog.Logger
}

// Subscription is the handle returned by Subscribe. Close detaches it.
type Subscription struct {
	bus     *Bus
	topic   domain.Topic
	handler Handler
	active  atomic.Bool
}

// New creates an empty bus
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[domain.Topic][]*Subscription),
		logger: logger,
	}
}

// Subscribe registers handler for topic
func (b *Bus) Subscribe(topic domain.Topic, handler Handler) *Subscription {
	sub := &Subscription{bus: b, topic: topic, handler: handler}
	sub.active.Store(true)

	b.mu.Lock()
	// Copy-on-write: in-flight publishes keep iterating their own snapshot
	list := make([]*Subscription, len(b.subs[topic]), len(b.subs[topic])+1)
	copy(list, b.subs[topic])
	b.subs[topic] = append(list, sub)
	count := len(b.subs[topic])
	b.mu.Unlock()

	b.logger.Debug("bus subscribe", "topic", topic, "subscribers", count)
	return sub
}

// Publish delivers change to the subscribers registered at the time of the call.
// A subscription closed while the publish is running is skipped.
func (b *Bus) Publish(change domain.Change) {
	b.mu.Lock()
	snapshot := b.subs[change.Topic]
	b.mu.Unlock()

	b.logger.Debug("bus publish",
		"topic", change.Topic,
		"command", change.Command,
		"subject", change.SubjectID,
		"subscribers", len(snapshot),
	)

	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		sub.handler(change)
	}
}

// Len returns the number of live subscribers for topic
func (b *Bus) Len(topic domain.Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close detaches the subscription. Safe to call more than once and from
// inside a handler.
func (s *Subscription) Close() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.subs[sub.topic]
	list := make([]*Subscription, 0, len(current))
	for _, s := range current {
		if s != sub {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		delete(b.subs, sub.topic)
		return
	}
	b.subs[sub.topic] = list
}

// Group closes a set of subscriptions together; a view holds one Group for
// everything it attached.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add tracks sub and returns it
func (g *Group) Add(sub *Subscription) *Subscription {
	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
	return sub
}

// Close closes every tracked subscription
func (g *Group) Close() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}
