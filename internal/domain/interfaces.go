package domain

import "context"

// KeyValueStore is the device-local durable storage used by the state repository.
// Calls are synchronous; Get reports false for absent keys and never fails.
type KeyValueStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Close() error
}

// Publisher broadcasts state changes to independent subscribers
type Publisher interface {
	Publish(change Change)
}

// CategoryFetcher loads the category tree from the catalog (best effort)
type CategoryFetcher interface {
	FetchCategories(ctx context.Context) ([]Category, error)
}

// CatalogClient provides read-only access to the remote podcast catalog
type CatalogClient interface {
	CategoryFetcher

	// GetEpisode returns a single episode by id
	GetEpisode(ctx context.Context, id string) (*Episode, error)

	// GetPodcast returns a single podcast by id
	GetPodcast(ctx context.Context, id string) (*Podcast, error)

	// CategoryPodcasts lists the podcasts of a category or subcategory
	CategoryPodcasts(ctx context.Context, id string) ([]Podcast, error)

	// PodcastEpisodes returns a podcast and its episodes
	PodcastEpisodes(ctx context.Context, id string) (*Podcast, []Episode, error)

	// SearchPodcasts finds podcasts by title
	SearchPodcasts(ctx context.Context, title string) ([]Podcast, error)
}
