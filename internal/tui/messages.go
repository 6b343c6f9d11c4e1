package tui

import (
	"github.com/mmcdole/podcatch/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ChangeMsg carries a bus notification into the update loop
type ChangeMsg struct {
	Change domain.Change
}

// PlayerFinishedMsg signals that the external player exited
type PlayerFinishedMsg struct {
	EpisodeID string
	Err       error
}

// PlaybackMsg reports the outcome of a load or navigation request
type PlaybackMsg struct {
	EpisodeID string
	Loaded    bool // false when there was nothing to play
	Err       error
}

// StoppedMsg signals that playback was stopped by the user
type StoppedMsg struct{}

// PodcastsLoadedMsg carries a category listing or search result.
// Token identifies the page that requested it.
type PodcastsLoadedMsg struct {
	Token    string
	Podcasts []domain.Podcast
}

// EpisodesLoadedMsg carries a podcast and its episodes
type EpisodesLoadedMsg struct {
	PodcastID string
	Podcast   *domain.Podcast
	Episodes  []domain.Episode
}

// EpisodeResolvedMsg carries catalog details for a queued episode
type EpisodeResolvedMsg struct {
	ID      string
	Episode *domain.Episode
	Err     error
}

// PodcastResolvedMsg carries catalog details for a favorite podcast
type PodcastResolvedMsg struct {
	ID      string
	Podcast *domain.Podcast
	Err     error
}
