// Package playback tracks the current episode and drives queue navigation.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/queue"
)

// launcher abstracts the external audio player (consumer-defined interface)
type launcher interface {
	Launch(episodeID, url string) error
}

// resolver looks up an episode's enclosure URL
type resolver interface {
	GetEpisode(ctx context.Context, id string) (*domain.Episode, error)
}

// queueState is the slice of the state repository playback needs
type queueState interface {
	Queue() domain.IDSet
	RemoveFromQueue(id any)
}

// Service orchestrates loading episodes and moving through the queue
type Service struct {
	tracker  *Tracker
	queue    queueState
	resolver resolver
	launcher launcher
	logger   *slog.Logger
}

// NewService creates a playback service. resolver and launcher may be nil, in
// which case Load only records the current episode.
func NewService(state queueState, resolver resolver, launcher launcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tracker:  &Tracker{},
		queue:    state,
		resolver: resolver,
		launcher: launcher,
		logger:   logger,
	}
}

// CurrentEpisodeID returns the episode currently loaded, if any
func (s *Service) CurrentEpisodeID() (string, bool) {
	return s.tracker.Current()
}

// SetCurrentEpisodeID records id as current without loading anything
func (s *Service) SetCurrentEpisodeID(id any) {
	s.tracker.SetCurrent(id)
}

// Load makes id the current episode, then resolves its enclosure and hands it
// to the launcher. The current pointer is updated even if resolving fails.
func (s *Service) Load(ctx context.Context, id any) error {
	key := domain.CanonicalID(id)
	s.tracker.SetCurrent(key)

	if s.resolver == nil {
		return nil
	}

	ep, err := s.resolver.GetEpisode(ctx, key)
	if err != nil {
		s.logger.Error("failed to resolve episode", "error", err, "episodeID", key)
		return fmt.Errorf("resolve episode %s: %w", key, err)
	}
	if ep.Enclosure == "" {
		return fmt.Errorf("episode %s has no enclosure: %w", key, domain.ErrNotFound)
	}

	if s.launcher == nil {
		return nil
	}

	s.logger.Info("launching playback", "title", ep.Title, "episodeID", key)
	if err := s.launcher.Launch(key, ep.Enclosure); err != nil {
		s.logger.Error("failed to launch player", "error", err, "episodeID", key)
		return err
	}
	return nil
}

// PlayFirst loads the head of the queue. It reports false if the queue is empty.
func (s *Service) PlayFirst(ctx context.Context) (string, bool, error) {
	id, ok := queue.First(s.queue.Queue())
	return s.loadIf(ctx, id, ok)
}

// PlayNext loads the entry after the current one
func (s *Service) PlayNext(ctx context.Context) (string, bool, error) {
	current, _ := s.tracker.Current()
	id, ok := queue.Next(s.queue.Queue(), current)
	return s.loadIf(ctx, id, ok)
}

// PlayPrevious loads the entry before the current one
func (s *Service) PlayPrevious(ctx context.Context) (string, bool, error) {
	current, _ := s.tracker.Current()
	id, ok := queue.Previous(s.queue.Queue(), current)
	return s.loadIf(ctx, id, ok)
}

// Complete removes the finished episode from the queue and makes the one that
// followed it current, without loading it. The successor is computed against
// the queue as it was before removal; computing it afterwards would restart
// from the head. When the finished episode was last, the current pointer is
// cleared and false is returned.
//
// Complete mutates the queue, so it belongs on the same goroutine as every
// other queue mutation; only the Load that follows may run elsewhere.
func (s *Service) Complete(id any) (string, bool) {
	key := domain.CanonicalID(id)
	snapshot := s.queue.Queue()
	next, ok := queue.Next(snapshot, key)

	s.queue.RemoveFromQueue(key)
	s.logger.Debug("playback completed", "episodeID", key, "next", next)

	if !ok {
		s.tracker.Clear()
		return "", false
	}
	s.tracker.SetCurrent(next)
	return next, true
}

// OnPlaybackCompleted runs Complete and loads the successor
func (s *Service) OnPlaybackCompleted(ctx context.Context, id any) (string, bool, error) {
	next, ok := s.Complete(id)
	if !ok {
		return "", false, nil
	}
	return next, true, s.Load(ctx, next)
}

func (s *Service) loadIf(ctx context.Context, id string, ok bool) (string, bool, error) {
	if !ok {
		return "", false, nil
	}
	return id, true, s.Load(ctx, id)
}

// IsUnavailable reports whether err means the episode could not be fetched
// rather than a player failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCatalogOffline)
}
