package state

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mmcdole/podcatch/internal/bus"
	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/log"
	"github.com/mmcdole/podcatch/internal/store"
)

// recorder collects every change published on a bus
type recorder struct {
	changes []domain.Change
}

func (r *recorder) count(topic domain.Topic) int {
	n := 0
	for _, c := range r.changes {
		if c.Topic == topic {
			n++
		}
	}
	return n
}

func (r *recorder) last() domain.Change {
	return r.changes[len(r.changes)-1]
}

func newTestRepository(t *testing.T) (*Repository, *store.Store, *recorder) {
	t.Helper()
	s, err := store.NewStore("", "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	b := bus.New(log.NullLogger())
	rec := &recorder{}
	b.Subscribe(domain.TopicFavorites, func(c domain.Change) { rec.changes = append(rec.changes, c) })
	b.Subscribe(domain.TopicQueue, func(c domain.Change) { rec.changes = append(rec.changes, c) })

	return New(s, b, log.NullLogger()), s, rec
}

type stubFetcher struct {
	categories []domain.Category
	err        error
}

func (f stubFetcher) FetchCategories(context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

func TestToggleFavoriteIsIdempotentOverPairs(t *testing.T) {
	repo, _, rec := newTestRepository(t)

	before := repo.IsFavorite("x")
	if !repo.ToggleFavorite("x") {
		t.Fatal("first toggle returned false, want true")
	}
	if repo.ToggleFavorite("x") {
		t.Fatal("second toggle returned true, want false")
	}
	if repo.IsFavorite("x") != before {
		t.Fatal("membership changed after a toggle pair")
	}

	if rec.count(domain.TopicFavorites) != 2 {
		t.Fatalf("favorites events = %d, want 2", rec.count(domain.TopicFavorites))
	}
	if rec.changes[0].Command != domain.CommandAdded || rec.changes[1].Command != domain.CommandRemoved {
		t.Fatalf("commands = %v, %v", rec.changes[0].Command, rec.changes[1].Command)
	}
}

func TestFavoriteIDNormalization(t *testing.T) {
	repo, _, rec := newTestRepository(t)

	repo.AddFavorite(42)
	if !repo.IsFavorite("42") {
		t.Fatal(`IsFavorite("42") = false after AddFavorite(42)`)
	}
	repo.AddFavorite("7")
	if !repo.IsFavorite(7) {
		t.Fatal("IsFavorite(7) = false after AddFavorite(\"7\")")
	}

	repo.AddFavorite("42")
	if got := repo.Favorites().Values(); fmt.Sprint(got) != "[42 7]" {
		t.Fatalf("Favorites() = %v, want [42 7]", got)
	}
	if rec.last().SubjectID != "42" {
		t.Fatalf("SubjectID = %q, want canonical 42", rec.last().SubjectID)
	}
}

func TestFavoriteMutationsAlwaysNotify(t *testing.T) {
	repo, _, rec := newTestRepository(t)

	tests := []struct {
		name string
		call func()
		want domain.Command
	}{
		{"add absent", func() { repo.AddFavorite("1") }, domain.CommandAdded},
		{"add present", func() { repo.AddFavorite("1") }, domain.CommandAdded},
		{"remove present", func() { repo.RemoveFavorite("1") }, domain.CommandRemoved},
		{"remove absent", func() { repo.RemoveFavorite("1") }, domain.CommandRemoved},
		{"toggle on", func() { repo.ToggleFavorite("1") }, domain.CommandAdded},
		{"toggle off", func() { repo.ToggleFavorite("1") }, domain.CommandRemoved},
	}

	for _, tt := range tests {
		before := len(rec.changes)
		tt.call()
		if got := len(rec.changes) - before; got != 1 {
			t.Fatalf("%s: published %d events, want 1", tt.name, got)
		}
		c := rec.last()
		if c.Topic != domain.TopicFavorites || c.Command != tt.want || c.SubjectID != "1" {
			t.Fatalf("%s: got %+v", tt.name, c)
		}
	}
}

func TestRemoveFromQueueAbsentIsSilent(t *testing.T) {
	repo, s, rec := newTestRepository(t)

	repo.RemoveFromQueue("ghost")
	if rec.count(domain.TopicQueue) != 0 {
		t.Fatalf("queue events = %d, want 0", rec.count(domain.TopicQueue))
	}
	if _, ok := s.Get(KeyQueue); ok {
		t.Fatal("no-op removal wrote the queue key")
	}

	repo.AddToQueue("e1")
	repo.RemoveFromQueue("e1")
	repo.RemoveFromQueue("e1")
	if rec.count(domain.TopicQueue) != 2 {
		t.Fatalf("queue events = %d, want 2", rec.count(domain.TopicQueue))
	}
}

func TestQueueToggleAndOrder(t *testing.T) {
	repo, _, rec := newTestRepository(t)

	repo.AddToQueue("a")
	repo.AddToQueue("b")
	repo.AddToQueue(3)
	if !repo.IsQueued("3") {
		t.Fatal(`IsQueued("3") = false after AddToQueue(3)`)
	}

	if repo.ToggleInQueue("b") {
		t.Fatal("ToggleInQueue(b) on a queued id returned true")
	}
	if !repo.ToggleInQueue("b") {
		t.Fatal("ToggleInQueue(b) on an absent id returned false")
	}

	if got := repo.Queue().Values(); fmt.Sprint(got) != "[a 3 b]" {
		t.Fatalf("Queue() = %v, want [a 3 b]", got)
	}
	if rec.count(domain.TopicQueue) != 5 {
		t.Fatalf("queue events = %d, want 5", rec.count(domain.TopicQueue))
	}
}

func TestMalformedStateDegradesToEmpty(t *testing.T) {
	repo, s, _ := newTestRepository(t)

	s.Set(KeyFavorites, []byte("{not json"))
	s.Set(KeyQueue, []byte(`{"an":"object"}`))
	s.Set(KeyCategories, []byte("garbage"))

	if n := repo.Favorites().Len(); n != 0 {
		t.Fatalf("Favorites().Len() = %d, want 0", n)
	}
	if n := repo.Queue().Len(); n != 0 {
		t.Fatalf("Queue().Len() = %d, want 0", n)
	}
	if _, ok := repo.CategoryName(1); ok {
		t.Fatal("CategoryName found a name in a malformed cache")
	}

	// Writing over malformed data recovers
	repo.AddFavorite("1")
	if !repo.IsFavorite("1") {
		t.Fatal("AddFavorite did not recover malformed favorites")
	}
}

func TestPersistedNumericIDsCollapse(t *testing.T) {
	repo, s, _ := newTestRepository(t)

	s.Set(KeyQueue, []byte(`[42, "42", "43"]`))
	if got := repo.Queue().Values(); fmt.Sprint(got) != "[42 43]" {
		t.Fatalf("Queue() = %v, want [42 43]", got)
	}
}

func TestCategoryName(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	if _, ok := repo.CategoryName(11); ok {
		t.Fatal("CategoryName on empty cache reported a match")
	}

	repo.InitializeDefaults(context.Background(), stubFetcher{categories: []domain.Category{
		{ID: "1", Name: "News", Subcategories: []domain.Category{{ID: "11", Name: "Tech News"}}},
		{ID: "2", Name: "Arts"},
	}})

	tests := []struct {
		id     any
		want   string
		wantOK bool
	}{
		{11, "Tech News", true},
		{"1", "News", true},
		{2, "Arts", true},
		{99, "", false},
	}
	for _, tt := range tests {
		got, ok := repo.CategoryName(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("CategoryName(%v) = %q, %v; want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCategoryNameTraversalOrder(t *testing.T) {
	// Id 5 is both the second top-level category and a subcategory of the first
	categories := []domain.Category{
		{ID: "1", Name: "Society", Subcategories: []domain.Category{{ID: "5", Name: "Sub Five"}}},
		{ID: "5", Name: "Top Five"},
		{ID: "7", Name: "Seven", Subcategories: []domain.Category{{ID: "7", Name: "Seven Sub"}}},
	}

	if got, _ := findCategoryName(categories, "5"); got != "Sub Five" {
		t.Fatalf("id 5 resolved to %q, want the earlier subcategory", got)
	}
	if got, _ := findCategoryName(categories, "7"); got != "Seven Sub" {
		t.Fatalf("id 7 resolved to %q, want its own subcategory before itself", got)
	}
}

func TestInitializeDefaultsSeedsDespiteFetchFailure(t *testing.T) {
	repo, s, rec := newTestRepository(t)

	repo.InitializeDefaults(context.Background(), stubFetcher{err: errors.New("offline")})

	for _, key := range []string{KeyFavorites, KeyQueue} {
		data, ok := s.Get(key)
		if !ok || string(data) != "[]" {
			t.Fatalf("%s = %q, %v; want []", key, data, ok)
		}
	}
	if _, ok := s.Get(KeyCategories); ok {
		t.Fatal("failed fetch wrote a category cache")
	}
	if len(rec.changes) != 0 {
		t.Fatalf("seeding published %d events", len(rec.changes))
	}
}

func TestInitializeDefaultsKeepsExistingState(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	repo.AddToQueue("e1")
	repo.AddFavorite("p1")
	repo.InitializeDefaults(context.Background(), stubFetcher{categories: []domain.Category{{ID: "1", Name: "News"}}})

	// A second, failing refresh keeps the earlier category cache
	repo.InitializeDefaults(context.Background(), stubFetcher{err: domain.ErrCatalogOffline})

	if !repo.IsQueued("e1") || !repo.IsFavorite("p1") {
		t.Fatal("InitializeDefaults overwrote existing collections")
	}
	if name, ok := repo.CategoryName(1); !ok || name != "News" {
		t.Fatalf("CategoryName(1) = %q, %v", name, ok)
	}
}

func TestClearAllIsSilent(t *testing.T) {
	repo, _, rec := newTestRepository(t)

	repo.AddToQueue("e1")
	repo.AddFavorite("p1")
	before := len(rec.changes)

	repo.ClearAll()

	if len(rec.changes) != before {
		t.Fatal("ClearAll published notifications")
	}
	if repo.IsQueued("e1") || repo.IsFavorite("p1") {
		t.Fatal("ClearAll left state behind")
	}
}

func TestNotificationPrecedesReturn(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	b := bus.New(log.NullLogger())
	repo.publisher = b

	// A handler reading state back sees the mutation already persisted
	var sawQueued bool
	b.Subscribe(domain.TopicQueue, func(c domain.Change) {
		sawQueued = repo.IsQueued(c.SubjectID)
	})

	repo.AddToQueue("e9")
	if !sawQueued {
		t.Fatal("handler ran before the queue was persisted, or not at all")
	}
}

type failingStore struct {
	*store.Store
}

func (failingStore) Set(string, []byte) error { return errors.New("disk full") }

func TestWriteFailureStillNotifies(t *testing.T) {
	mem, _ := store.NewStore("", "")
	b := bus.New(log.NullLogger())
	events := 0
	b.Subscribe(domain.TopicFavorites, func(domain.Change) { events++ })

	repo := New(failingStore{mem}, b, log.NullLogger())
	repo.AddFavorite("1")

	if events != 1 {
		t.Fatalf("events = %d, want 1", events)
	}
}
