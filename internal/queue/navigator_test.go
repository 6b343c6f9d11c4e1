package queue

import (
	"testing"

	"github.com/mmcdole/podcatch/internal/domain"
)

type result struct {
	id string
	ok bool
}

func TestNavigation(t *testing.T) {
	abc := domain.NewIDSet("a", "b", "c")
	removedB := domain.NewIDSet("a", "b", "c")
	removedB.Remove("b")

	tests := []struct {
		name string
		got  func() (string, bool)
		want result
	}{
		{"first", func() (string, bool) { return First(abc) }, result{"a", true}},
		{"next middle", func() (string, bool) { return Next(abc, "a") }, result{"b", true}},
		{"next last", func() (string, bool) { return Next(abc, "c") }, result{"", false}},
		{"previous middle", func() (string, bool) { return Previous(abc, "b") }, result{"a", true}},
		{"previous first", func() (string, bool) { return Previous(abc, "a") }, result{"", false}},
		{"next unknown", func() (string, bool) { return Next(abc, "unknown-id") }, result{"a", true}},
		{"previous unknown", func() (string, bool) { return Previous(abc, "unknown-id") }, result{"a", true}},
		{"next nil current", func() (string, bool) { return Next(abc, nil) }, result{"a", true}},
		{"next after removal", func() (string, bool) { return Next(removedB, "a") }, result{"c", true}},
		{"previous after removal", func() (string, bool) { return Previous(removedB, "c") }, result{"a", true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.got()
			if id != tt.want.id || ok != tt.want.ok {
				t.Fatalf("got (%q, %v), want (%q, %v)", id, ok, tt.want.id, tt.want.ok)
			}
		})
	}
}

func TestEmptyQueue(t *testing.T) {
	var empty domain.IDSet

	if id, ok := First(empty); ok || id != "" {
		t.Fatalf("First(empty) = (%q, %v)", id, ok)
	}
	if id, ok := Next(empty, "a"); ok || id != "" {
		t.Fatalf("Next(empty) = (%q, %v)", id, ok)
	}
	if id, ok := Previous(empty, "a"); ok || id != "" {
		t.Fatalf("Previous(empty) = (%q, %v)", id, ok)
	}
}

func TestNumericCurrentID(t *testing.T) {
	q := domain.NewIDSet("10", "20")
	if id, ok := Next(q, 10); !ok || id != "20" {
		t.Fatalf("Next(q, 10) = (%q, %v), want (20, true)", id, ok)
	}
}

func TestNavigationDoesNotMutate(t *testing.T) {
	q := domain.NewIDSet("a", "b")
	Next(q, "a")
	Previous(q, "b")
	First(q)
	if q.Len() != 2 || q.At(0) != "a" || q.At(1) != "b" {
		t.Fatalf("queue changed: %v", q.Values())
	}
}

func TestSingleEntry(t *testing.T) {
	q := domain.NewIDSet("only")
	if _, ok := Next(q, "only"); ok {
		t.Fatal("Next on the only entry returned a value")
	}
	if _, ok := Previous(q, "only"); ok {
		t.Fatal("Previous on the only entry returned a value")
	}
}
