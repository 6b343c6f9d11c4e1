package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/podcatch/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "podcatch/1.0"
)

// envelope is the wrapper every fyyd response uses. status 0 means the
// request was understood but produced nothing.
type envelope struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// Client implements domain.CatalogClient for the fyyd API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.CatalogClient = (*Client)(nil)

// NewClient creates a new catalog client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs a GET and returns the envelope payload
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("catalog request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Status == 0 || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, env.Msg)
	}
	return env.Data, nil
}

// FetchCategories returns the full two-level category tree
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := c.doRequest(ctx, "/categories", nil)
	if err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// GetEpisode returns a single episode
func (c *Client) GetEpisode(ctx context.Context, id string) (*domain.Episode, error) {
	data, err := c.doRequest(ctx, "/episode", url.Values{"episode_id": {id}})
	if err != nil {
		return nil, err
	}
	var ep domain.Episode
	if err := json.Unmarshal(data, &ep); err != nil {
		return nil, fmt.Errorf("failed to decode episode %s: %w", id, err)
	}
	return &ep, nil
}

// GetPodcast returns a single podcast
func (c *Client) GetPodcast(ctx context.Context, id string) (*domain.Podcast, error) {
	data, err := c.doRequest(ctx, "/podcast", url.Values{"podcast_id": {id}})
	if err != nil {
		return nil, err
	}
	var p domain.Podcast
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode podcast %s: %w", id, err)
	}
	return &p, nil
}

// categoryPage is the payload of /category
type categoryPage struct {
	Podcasts []domain.Podcast `json:"podcasts"`
}

// podcastWithEpisodes is the payload of /podcast/episodes
type podcastWithEpisodes struct {
	domain.Podcast
	Episodes []domain.Episode `json:"episodes"`
}

// CategoryPodcasts lists the podcasts filed under a category or subcategory.
// A category without podcasts yields an empty list.
func (c *Client) CategoryPodcasts(ctx context.Context, id string) ([]domain.Podcast, error) {
	data, err := c.doRequest(ctx, "/category", url.Values{"category_id": {id}})
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Podcast{}, nil
	}
	if err != nil {
		return nil, err
	}
	var page categoryPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode category %s: %w", id, err)
	}
	return page.Podcasts, nil
}

// PodcastEpisodes returns a podcast together with its episodes
func (c *Client) PodcastEpisodes(ctx context.Context, id string) (*domain.Podcast, []domain.Episode, error) {
	data, err := c.doRequest(ctx, "/podcast/episodes", url.Values{"podcast_id": {id}})
	if err != nil {
		return nil, nil, err
	}
	var p podcastWithEpisodes
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("failed to decode episodes of podcast %s: %w", id, err)
	}
	for i := range p.Episodes {
		if p.Episodes[i].PodcastID == "" {
			p.Episodes[i].PodcastID = p.ID
		}
	}
	return &p.Podcast, p.Episodes, nil
}

// SearchPodcasts finds podcasts by title. No match yields an empty list.
func (c *Client) SearchPodcasts(ctx context.Context, title string) ([]domain.Podcast, error) {
	data, err := c.doRequest(ctx, "/search/podcast", url.Values{"title": {title}})
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Podcast{}, nil
	}
	if err != nil {
		return nil, err
	}
	var podcasts []domain.Podcast
	if err := json.Unmarshal(data, &podcasts); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return podcasts, nil
}
