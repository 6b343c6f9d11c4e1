package store

import (
	"fmt"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s, err := NewStore("", "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if _, ok := s.Get("favorites"); ok {
		t.Fatal("Get on empty store reported a value")
	}
	if err := s.Set("favorites", []byte(`["1"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := s.Get("favorites")
	if !ok || string(got) != `["1"]` {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// Returned slices must not alias the cache
	got[0] = 'x'
	again, _ := s.Get("favorites")
	if string(again) != `["1"]` {
		t.Fatalf("cache was mutated through returned slice: %q", again)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, "default")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set("queue", []byte(`["e1","e2"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(dir, "default")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("queue")
	if !ok || string(got) != `["e1","e2"]` {
		t.Fatalf("Get after reopen = %q, %v", got, ok)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	dir := t.TempDir()

	a, err := NewStore(dir, "alice")
	if err != nil {
		t.Fatalf("NewStore(alice): %v", err)
	}
	defer a.Close()
	b, err := NewStore(dir, "bob")
	if err != nil {
		t.Fatalf("NewStore(bob): %v", err)
	}
	defer b.Close()

	if err := a.Set("favorites", []byte(`["1"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := b.Get("favorites"); ok {
		t.Fatal("profile bob sees alice's favorites")
	}
}

func TestClearAndDelete(t *testing.T) {
	for _, dir := range []string{"", t.TempDir()} {
		t.Run(fmt.Sprintf("dir=%q", dir), func(t *testing.T) {
			s, err := NewStore(dir, "")
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			defer s.Close()

			for _, k := range []string{"categories", "favorites", "queue"} {
				if err := s.Set(k, []byte("[]")); err != nil {
					t.Fatalf("Set(%s): %v", k, err)
				}
			}
			if err := s.Delete("categories"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if keys := s.Keys(); fmt.Sprint(keys) != "[favorites queue]" {
				t.Fatalf("Keys() = %v", keys)
			}

			if err := s.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if keys := s.Keys(); len(keys) != 0 {
				t.Fatalf("Keys() after Clear = %v", keys)
			}
			if _, ok := s.Get("queue"); ok {
				t.Fatal("Get after Clear reported a value")
			}
			// Store stays usable after Clear
			if err := s.Set("queue", []byte(`["e1"]`)); err != nil {
				t.Fatalf("Set after Clear: %v", err)
			}
		})
	}
}
