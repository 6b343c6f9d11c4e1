package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/player"
)

// Command factories for async operations

const (
	playbackTimeout = 30 * time.Second
	lookupTimeout   = 15 * time.Second
)

// WaitForChangeCmd blocks until the next bus notification
func WaitForChangeCmd(ch <-chan domain.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg{Change: change}
	}
}

// WaitForPlayerCmd blocks until the external player exits
func WaitForPlayerCmd(ch <-chan player.Finished) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return PlayerFinishedMsg{EpisodeID: f.EpisodeID, Err: f.Err}
	}
}

// LoadEpisodeCmd plays a specific episode
func LoadEpisodeCmd(svc playbackService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		err := svc.Load(ctx, id)
		return PlaybackMsg{EpisodeID: id, Loaded: true, Err: err}
	}
}

// navigateFunc is one of the playback service's navigation methods
type navigateFunc func(ctx context.Context) (string, bool, error)

// NavigateCmd runs a queue navigation request
func NavigateCmd(fn navigateFunc) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		id, ok, err := fn(ctx)
		return PlaybackMsg{EpisodeID: id, Loaded: ok, Err: err}
	}
}

// StopCmd stops the external player
func StopCmd(s stopper) tea.Cmd {
	return func() tea.Msg {
		s.Stop()
		return StoppedMsg{}
	}
}

// ResolveEpisodeCmd fetches episode details for display
func ResolveEpisodeCmd(c catalog, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		ep, err := c.GetEpisode(ctx, id)
		return EpisodeResolvedMsg{ID: id, Episode: ep, Err: err}
	}
}

// ResolvePodcastCmd fetches podcast details for display
func ResolvePodcastCmd(c catalog, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		p, err := c.GetPodcast(ctx, id)
		return PodcastResolvedMsg{ID: id, Podcast: p, Err: err}
	}
}

// categoryToken and searchToken name the pages podcast listings belong to
func categoryToken(id string) string  { return "category:" + id }
func searchToken(query string) string { return "search:" + query }

// LoadCategoryCmd lists the podcasts of a category
func LoadCategoryCmd(c catalog, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		podcasts, err := c.CategoryPodcasts(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading category"}
		}
		return PodcastsLoadedMsg{Token: categoryToken(id), Podcasts: podcasts}
	}
}

// SearchPodcastsCmd searches podcasts by title
func SearchPodcastsCmd(c catalog, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		podcasts, err := c.SearchPodcasts(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching podcasts"}
		}
		return PodcastsLoadedMsg{Token: searchToken(query), Podcasts: podcasts}
	}
}

// LoadEpisodesCmd lists a podcast's episodes
func LoadEpisodesCmd(c catalog, podcastID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		p, episodes, err := c.PodcastEpisodes(ctx, podcastID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading episodes"}
		}
		return EpisodesLoadedMsg{PodcastID: podcastID, Podcast: p, Episodes: episodes}
	}
}
