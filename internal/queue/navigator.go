// Package queue computes traversal over the episode queue.
//
// The functions are pure: they read an insertion-ordered snapshot and never
// modify it. A false result means "nothing to load", not an error.
package queue

import "github.com/mmcdole/podcatch/internal/domain"

// First returns the earliest queued id
func First(q domain.IDSet) (string, bool) {
	if q.Len() == 0 {
		return "", false
	}
	return q.At(0), true
}

// Next returns the id queued right after current. When current is not in the
// queue it behaves as First. There is no wraparound past the last entry.
func Next(q domain.IDSet, current any) (string, bool) {
	i := q.Index(current)
	if i < 0 {
		return First(q)
	}
	if i+1 >= q.Len() {
		return "", false
	}
	return q.At(i + 1), true
}

// Previous returns the id queued right before current. When current is not in
// the queue it behaves as First. There is no wraparound before the first entry.
func Previous(q domain.IDSet, current any) (string, bool) {
	i := q.Index(current)
	if i < 0 {
		return First(q)
	}
	if i == 0 {
		return "", false
	}
	return q.At(i - 1), true
}
