package playback

import (
	"sync"

	"github.com/mmcdole/podcatch/internal/domain"
)

// Tracker holds the id of the episode currently loaded in the player.
// It lives in memory only and starts empty on every launch.
type Tracker struct {
	mu      sync.RWMutex
	current string
	set     bool
}

// SetCurrent records id as the current episode
func (t *Tracker) SetCurrent(id any) {
	t.mu.Lock()
	t.current = domain.CanonicalID(id)
	t.set = true
	t.mu.Unlock()
}

// Current returns the current episode id, or false when nothing is loaded
func (t *Tracker) Current() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.set
}

// Clear forgets the current episode
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.current = ""
	t.set = false
	t.mu.Unlock()
}
