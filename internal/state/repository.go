// Package state owns the persisted favorites, queue and category cache.
//
// Every mutation goes through Repository, is written to the key/value store
// immediately, and is announced on the bus before the call returns.
//
// Notifications follow mutation order for a single calling goroutine. The
// lock is released before publishing so handlers may call back into the
// repository; callers on different goroutines can therefore see their
// notifications interleave out of order. The terminal UI makes every mutation
// from its update loop.
package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mmcdole/podcatch/internal/domain"
)

// Storage keys
const (
	KeyCategories = "categories"
	KeyFavorites  = "favorites"
	KeyQueue      = "queue"
)

// Repository is the single writer of durable client state.
type Repository struct {
	store     domain.KeyValueStore
	publisher domain.Publisher
	logger    *slog.Logger

	// Serializes read-modify-write cycles. Never held while publishing.
	mu sync.Mutex
}

// New creates a repository over store. publisher may be nil (no notifications).
func New(store domain.KeyValueStore, publisher domain.Publisher, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, publisher: publisher, logger: logger}
}

// InitializeDefaults refreshes the category cache from fetcher and seeds empty
// favorites and queue collections on first run. A failed fetch is logged and
// leaves any existing category cache in place; seeding happens regardless.
func (r *Repository) InitializeDefaults(ctx context.Context, fetcher domain.CategoryFetcher) {
	if fetcher != nil {
		categories, err := fetcher.FetchCategories(ctx)
		if err != nil {
			r.logger.Warn("failed to fetch categories", "error", err)
		} else {
			r.mu.Lock()
			r.write(KeyCategories, categories)
			r.mu.Unlock()
			r.logger.Debug("cached categories", "count", len(categories))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range []string{KeyFavorites, KeyQueue} {
		if _, ok := r.store.Get(key); !ok {
			r.write(key, domain.IDSet{})
			r.logger.Info("seeded empty collection", "key", key)
		}
	}
}

// ClearAll wipes all persisted state. No notifications are published.
func (r *Repository) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Clear(); err != nil {
		r.logger.Error("failed to clear state", "error", err)
		return
	}
	r.logger.Info("cleared all state")
}

// === Favorites ===

// Favorites returns the favorite podcast ids in insertion order
func (r *Repository) Favorites() domain.IDSet {
	return r.readSet(KeyFavorites)
}

// AddFavorite adds id. Publishes "added" even when id was already a favorite.
func (r *Repository) AddFavorite(id any) {
	key := domain.CanonicalID(id)
	r.mutate(KeyFavorites, func(s *domain.IDSet) bool { return s.Add(key) })
	r.publish(domain.TopicFavorites, domain.CommandAdded, key)
}

// RemoveFavorite removes id. Publishes "removed" even when id was not a favorite.
func (r *Repository) RemoveFavorite(id any) {
	key := domain.CanonicalID(id)
	r.mutate(KeyFavorites, func(s *domain.IDSet) bool { return s.Remove(key) })
	r.publish(domain.TopicFavorites, domain.CommandRemoved, key)
}

// ToggleFavorite flips membership of id and returns true if it is now a favorite
func (r *Repository) ToggleFavorite(id any) bool {
	key := domain.CanonicalID(id)
	cmd, now := r.toggle(KeyFavorites, key)
	r.publish(domain.TopicFavorites, cmd, key)
	return now
}

// IsFavorite reports whether id is a favorite
func (r *Repository) IsFavorite(id any) bool {
	return r.Favorites().Has(id)
}

// === Queue ===

// Queue returns the queued episode ids in insertion order
func (r *Repository) Queue() domain.IDSet {
	return r.readSet(KeyQueue)
}

// AddToQueue appends id. Publishes "added" even when id was already queued.
func (r *Repository) AddToQueue(id any) {
	key := domain.CanonicalID(id)
	r.mutate(KeyQueue, func(s *domain.IDSet) bool { return s.Add(key) })
	r.publish(domain.TopicQueue, domain.CommandAdded, key)
}

// RemoveFromQueue removes id. Unlike favorites, nothing is written or
// published when id was not queued.
func (r *Repository) RemoveFromQueue(id any) {
	key := domain.CanonicalID(id)
	if !r.mutate(KeyQueue, func(s *domain.IDSet) bool { return s.Remove(key) }) {
		return
	}
	r.publish(domain.TopicQueue, domain.CommandRemoved, key)
}

// ToggleInQueue flips membership of id and returns true if it is now queued
func (r *Repository) ToggleInQueue(id any) bool {
	key := domain.CanonicalID(id)
	cmd, now := r.toggle(KeyQueue, key)
	r.publish(domain.TopicQueue, cmd, key)
	return now
}

// IsQueued reports whether id is in the queue
func (r *Repository) IsQueued(id any) bool {
	return r.Queue().Has(id)
}

// === Categories ===

// Categories returns the cached category tree
func (r *Repository) Categories() ([]domain.Category, bool) {
	data, ok := r.store.Get(KeyCategories)
	if !ok {
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		r.logger.Warn("malformed category cache", "error", err)
		return nil, false
	}
	return categories, true
}

// CategoryName resolves a category or subcategory id to its name.
//
// The tree is walked one top-level category at a time: its subcategories are
// checked first, then the category itself, then the next top-level category.
// The first match wins, so an id that appears in more than one place resolves
// to whichever comes first in that order.
func (r *Repository) CategoryName(id any) (string, bool) {
	categories, ok := r.Categories()
	if !ok {
		return "", false
	}
	return findCategoryName(categories, domain.CanonicalID(id))
}

func findCategoryName(categories []domain.Category, key string) (string, bool) {
	for _, c := range categories {
		for _, sub := range c.Subcategories {
			if string(sub.ID) == key {
				return sub.Name, true
			}
		}
		if string(c.ID) == key {
			return c.Name, true
		}
	}
	return "", false
}

// === Internals ===

// readSet decodes a persisted id array. Absent or malformed data yields an
// empty set.
func (r *Repository) readSet(key string) domain.IDSet {
	data, ok := r.store.Get(key)
	if !ok {
		return domain.IDSet{}
	}
	var set domain.IDSet
	if err := json.Unmarshal(data, &set); err != nil {
		r.logger.Warn("malformed persisted collection", "key", key, "error", err)
		return domain.IDSet{}
	}
	return set
}

// mutate applies fn to the set under key and persists it when fn reports a change
func (r *Repository) mutate(key string, fn func(*domain.IDSet) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.readSet(key)
	if !fn(&set) {
		return false
	}
	r.write(key, set)
	return true
}

func (r *Repository) toggle(key, id string) (domain.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.readSet(key)
	cmd := domain.CommandAdded
	if set.Has(id) {
		set.Remove(id)
		cmd = domain.CommandRemoved
	} else {
		set.Add(id)
	}
	r.write(key, set)
	return cmd, set.Has(id)
}

// write persists value as JSON. Failures are logged, never returned.
func (r *Repository) write(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Error("failed to encode state", "key", key, "error", err)
		return
	}
	if err := r.store.Set(key, data); err != nil {
		r.logger.Error("failed to persist state", "key", key, "error", err)
	}
}

func (r *Repository) publish(topic domain.Topic, cmd domain.Command, id string) {
	r.logger.Debug("state changed", "topic", topic, "command", cmd, "id", id)
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(domain.Change{Topic: topic, Command: cmd, SubjectID: id})
}
