package domain

import (
	"fmt"
	"time"
)

// Category is a catalog category. Top-level categories carry one level of
// subcategories; subcategories have none.
type Category struct {
	ID            FlexID     `json:"id"`
	Name          string     `json:"name"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

// Podcast is a catalog podcast record
type Podcast struct {
	ID           FlexID   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Author       string   `json:"author"`
	ImageURL     string   `json:"imgURL"`
	Categories   []FlexID `json:"categories"`
	EpisodeCount int      `json:"episode_count"`
}

// Episode is a catalog episode record
type Episode struct {
	ID        FlexID  `json:"id"`
	PodcastID FlexID  `json:"podcast_id"`
	Title     string  `json:"title"`
	Enclosure string  `json:"enclosure"` // Media URL handed to the player
	ImageURL  string  `json:"imgURL"`
	Seconds   float64 `json:"duration"`
}

// Duration returns the episode length
func (e Episode) Duration() time.Duration {
	return time.Duration(e.Seconds * float64(time.Second))
}

// FormattedDuration returns the duration as hh:mm:ss
func (e Episode) FormattedDuration() string {
	d := e.Duration()
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
