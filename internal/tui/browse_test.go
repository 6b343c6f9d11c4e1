package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/log"
	"github.com/mmcdole/podcatch/internal/tui/styles"
)

type fakeCatalog struct {
	byCategory map[string][]domain.Podcast
	episodes   map[string][]domain.Episode
	results    []domain.Podcast
	err        error
}

func (c fakeCatalog) GetEpisode(_ context.Context, id string) (*domain.Episode, error) {
	return nil, domain.ErrNotFound
}

func (c fakeCatalog) GetPodcast(_ context.Context, id string) (*domain.Podcast, error) {
	return nil, domain.ErrNotFound
}

func (c fakeCatalog) CategoryPodcasts(_ context.Context, id string) ([]domain.Podcast, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.byCategory[id], nil
}

func (c fakeCatalog) PodcastEpisodes(_ context.Context, id string) (*domain.Podcast, []domain.Episode, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	return &domain.Podcast{ID: domain.FlexID(id), Title: "Podcast " + id}, c.episodes[id], nil
}

func (c fakeCatalog) SearchPodcasts(_ context.Context, title string) ([]domain.Podcast, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.results, nil
}

func newCatalog() fakeCatalog {
	return fakeCatalog{
		byCategory: map[string][]domain.Podcast{
			"11": {{ID: "7", Title: "Byte Sized"}, {ID: "8", Title: "Kernel Hour"}},
		},
		episodes: map[string][]domain.Episode{
			"7": {
				{ID: "70", PodcastID: "7", Title: "Pilot", Seconds: 90},
				{ID: "71", PodcastID: "7", Title: "Second"},
			},
		},
		results: []domain.Podcast{{ID: "9", Title: "Daily Digest"}},
	}
}

func (f *fixture) browsingModel(c catalog) Model {
	return NewModel(Deps{
		State:    f.repo,
		Playback: f.playback,
		Catalog:  c,
		Changes:  f.observer.Changes(),
		Logger:   log.NullLogger(),
	})
}

// run executes cmd and feeds its message back into the model
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = update(t, m, cmd())
	return m
}

func prompt(t *testing.T, m Model, k, value string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = update(t, m, keyRunes(k))
	m, _ = update(t, m, keyRunes(value))
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func space() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

func rowIDs(rows []row) string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}
	return strings.Join(ids, ",")
}

func TestGoToCategoryOpensPodcastsThenEpisodes(t *testing.T) {
	f := newFixture(t)
	m := f.browsingModel(newCatalog())

	m, cmd := prompt(t, m, "c", "tech")
	if p := m.top(); p == nil || !p.loading || p.title != "News / Tech News" {
		t.Fatalf("page = %+v", m.top())
	}
	m = run(t, m, cmd)
	if got := rowIDs(m.visibleRows()); got != "7,8" {
		t.Fatalf("podcast rows = %s, want 7,8", got)
	}
	if !strings.Contains(m.View(), "Kernel Hour") {
		t.Fatal("podcast titles not rendered")
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)
	rows := m.visibleRows()
	if rowIDs(rows) != "70,71" || rows[0].kind != rowEpisode {
		t.Fatalf("episode rows = %+v", rows)
	}
	if m.top().title != "Podcast 7" {
		t.Fatalf("page title = %q", m.top().title)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.pages) != 0 {
		t.Fatalf("pages = %d after going back twice", len(m.pages))
	}
}

func TestGoToCategoryWithoutMatch(t *testing.T) {
	f := newFixture(t)
	m := f.browsingModel(newCatalog())

	m, cmd := prompt(t, m, "c", "zzzz")
	if cmd != nil || len(m.pages) != 0 {
		t.Fatal("page opened for an unknown category")
	}
	if !m.statusErr || !strings.Contains(m.status, "no category matches") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestCategoryTabEnterOpensCategory(t *testing.T) {
	f := newFixture(t)
	m := f.browsingModel(newCatalog())
	m, _ = update(t, m, keyRunes("l"))
	m, _ = update(t, m, keyRunes("l"))
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("tech"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // leave filter input

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)
	if got := rowIDs(m.visibleRows()); got != "7,8" {
		t.Fatalf("rows = %s, want 7,8", got)
	}
	if m.filter.Value() != "" {
		t.Fatal("filter carried into the opened page")
	}
}

func TestTitleSearch(t *testing.T) {
	f := newFixture(t)
	m := f.browsingModel(newCatalog())

	m, cmd := prompt(t, m, "t", "daily")
	m = run(t, m, cmd)
	if got := rowIDs(m.visibleRows()); got != "9" {
		t.Fatalf("rows = %s, want 9", got)
	}

	m, _ = update(t, m, keyRunes("f"))
	if !f.repo.IsFavorite("9") {
		t.Fatal("search result not favorited")
	}
}

func TestEpisodePageMarkersFollowBus(t *testing.T) {
	f := newFixture(t)
	m := f.browsingModel(newCatalog())
	m, cmd := prompt(t, m, "c", "tech")
	m = run(t, m, cmd)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	if r, _ := m.selected(); r.marker != " " {
		t.Fatalf("marker before queueing = %q", r.marker)
	}

	m, _ = update(t, m, space())
	if !f.repo.IsQueued("70") {
		t.Fatal("selected episode not queued")
	}
	m = drainChange(t, f, m)
	if r, _ := m.selected(); r.marker != styles.QueuedMarker {
		t.Fatalf("marker after queueing = %q", r.marker)
	}

	// A change made elsewhere reaches the open page too.
	f.repo.RemoveFromQueue("70")
	m = drainChange(t, f, m)
	if r, _ := m.selected(); r.marker != " " {
		t.Fatalf("marker after removal = %q", r.marker)
	}

	m, _ = update(t, m, keyRunes("f"))
	if !f.repo.IsFavorite("7") {
		t.Fatal("episode's podcast not favorited from the episode page")
	}
}

func TestFailedCatalogLoadReportsError(t *testing.T) {
	f := newFixture(t)
	c := newCatalog()
	c.err = errors.New("connection refused")
	m := f.browsingModel(c)

	m, cmd := prompt(t, m, "t", "daily")
	msg := cmd()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
	m, _ = update(t, m, msg)

	if !m.statusErr || !strings.Contains(m.status, "searching podcasts: connection refused") {
		t.Fatalf("status = %q", m.status)
	}
	if m.top().loading {
		t.Fatal("page still loading after failure")
	}
	if !strings.Contains(m.View(), "no podcasts") {
		t.Fatal("empty page not rendered")
	}
}

func TestToggleQueueUsesSelectedRow(t *testing.T) {
	f := newFixture(t)
	f.repo.AddToQueue("a")
	f.repo.AddToQueue("b")
	f.playback.SetCurrentEpisodeID("a")
	m := f.model()

	m, _ = update(t, m, keyRunes("j"))
	m, _ = update(t, m, space())

	if got := f.repo.Queue().Values(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("queue = %v, want [a]", got)
	}
}

func TestToggleQueueFallsBackToPlayingEpisode(t *testing.T) {
	f := newFixture(t)
	f.playback.SetCurrentEpisodeID("e9")
	m := f.model()
	m, _ = update(t, m, keyRunes("l")) // favorites, nothing selected

	m, _ = update(t, m, space())
	if !f.repo.IsQueued("e9") {
		t.Fatal("playing episode not queued")
	}
}
