// Package tui is the terminal front end. Collection views load their state
// from the repository when created and reload whenever the bus announces a
// change, so every open view stays current. Catalog pages pushed on top of a
// tab take their favorite and queue markers from the same snapshots.
//
// Every repository mutation is made from Update, so notifications reach the
// observer in the order the mutations happened.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/podcatch/internal/domain"
	"github.com/mmcdole/podcatch/internal/player"
	"github.com/mmcdole/podcatch/internal/search"
	"github.com/mmcdole/podcatch/internal/tui/styles"
)

// stateRepo is the slice of the state repository the views use
type stateRepo interface {
	Favorites() domain.IDSet
	AddFavorite(id any)
	RemoveFavorite(id any)
	ToggleFavorite(id any) bool
	Queue() domain.IDSet
	AddToQueue(id any)
	RemoveFromQueue(id any)
	ToggleInQueue(id any) bool
	Categories() ([]domain.Category, bool)
	CategoryName(id any) (string, bool)
}

// playbackService drives the player and queue navigation
type playbackService interface {
	CurrentEpisodeID() (string, bool)
	Load(ctx context.Context, id any) error
	PlayFirst(ctx context.Context) (string, bool, error)
	PlayNext(ctx context.Context) (string, bool, error)
	PlayPrevious(ctx context.Context) (string, bool, error)
	Complete(id any) (string, bool)
}

// catalog resolves ids to display details and lists catalog pages
type catalog interface {
	GetEpisode(ctx context.Context, id string) (*domain.Episode, error)
	GetPodcast(ctx context.Context, id string) (*domain.Podcast, error)
	CategoryPodcasts(ctx context.Context, id string) ([]domain.Podcast, error)
	PodcastEpisodes(ctx context.Context, id string) (*domain.Podcast, []domain.Episode, error)
	SearchPodcasts(ctx context.Context, title string) ([]domain.Podcast, error)
}

type stopper interface {
	Stop()
}

// View identifies one of the top-level tabs
type View int

const (
	ViewQueue View = iota
	ViewFavorites
	ViewCategories
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewQueue:
		return "Queue"
	case ViewFavorites:
		return "Favorites"
	case ViewCategories:
		return "Categories"
	default:
		return "?"
	}
}

type pageKind int

const (
	pagePodcasts pageKind = iota
	pageEpisodes
)

// page is a catalog listing opened on top of a tab
type page struct {
	kind  pageKind
	title string
	// token matches a PodcastsLoadedMsg to its podcasts page; podcastID
	// matches an EpisodesLoadedMsg to its episodes page.
	token     string
	podcastID string
	ids       []string
	loading   bool
	cursor    int
}

type promptKind int

const (
	promptNone promptKind = iota
	promptAdd
	promptSearch
	promptCategory
)

// Deps bundles the collaborators the model needs. Catalog, Player and the
// channels are optional.
type Deps struct {
	State      stateRepo
	Playback   playbackService
	Catalog    catalog
	Player     stopper
	Changes    <-chan domain.Change
	PlayerDone <-chan player.Finished
	Logger     *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps   Deps
	logger *slog.Logger

	// Snapshots reloaded on every bus notification
	queue      domain.IDSet
	favorites  domain.IDSet
	categories *search.CategoryIndex

	// Catalog details, shared across model copies
	episodes map[string]*domain.Episode
	podcasts map[string]*domain.Podcast
	pending  map[string]bool

	view    View
	cursors [viewCount]int
	pages   []page

	filter    textinput.Model
	filtering bool
	input     textinput.Model
	prompt    promptKind
	help      help.Model
	showHelp  bool

	status    string
	statusErr bool

	width  int
	height int
}

// NewModel creates the application model and loads the initial snapshots
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	filter := textinput.New()
	filter.Prompt = "/"
	filter.CharLimit = 64
	filter.PromptStyle = styles.AccentStyle
	filter.PlaceholderStyle = styles.DimStyle

	input := textinput.New()
	input.CharLimit = 64
	input.Width = 32
	input.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	input.PlaceholderStyle = styles.DimStyle

	m := Model{
		deps:     deps,
		logger:   logger,
		episodes: make(map[string]*domain.Episode),
		podcasts: make(map[string]*domain.Podcast),
		pending:  make(map[string]bool),
		filter:   filter,
		input:    input,
		help:     help.New(),
	}

	categories, _ := deps.State.Categories()
	m.categories = search.NewCategoryIndex(categories)
	m.reload()
	return m
}

// Init starts listening for notifications and resolves titles
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		WaitForChangeCmd(m.deps.Changes),
		WaitForPlayerCmd(m.deps.PlayerDone),
	}
	cmds = append(cmds, m.resolveMissing()...)
	return tea.Batch(cmds...)
}

// reload re-reads both collections and keeps cursors in range
func (m *Model) reload() {
	m.queue = m.deps.State.Queue()
	m.favorites = m.deps.State.Favorites()
	for v := View(0); v < viewCount; v++ {
		m.clampTab(v)
	}
	m.clampPage()
}

// resolveMissing requests catalog details for ids not seen before
func (m *Model) resolveMissing() []tea.Cmd {
	if m.deps.Catalog == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, id := range m.queue.Values() {
		key := "e:" + id
		if _, ok := m.episodes[id]; ok || m.pending[key] {
			continue
		}
		m.pending[key] = true
		cmds = append(cmds, ResolveEpisodeCmd(m.deps.Catalog, id))
	}
	for _, id := range m.favorites.Values() {
		key := "p:" + id
		if _, ok := m.podcasts[id]; ok || m.pending[key] {
			continue
		}
		m.pending[key] = true
		cmds = append(cmds, ResolvePodcastCmd(m.deps.Catalog, id))
	}
	return cmds
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// ActiveView returns the selected tab
func (m Model) ActiveView() View {
	return m.view
}

// top returns the open catalog page, or nil when a tab is showing
func (m *Model) top() *page {
	if len(m.pages) == 0 {
		return nil
	}
	return &m.pages[len(m.pages)-1]
}

func (m *Model) pushPage(p page) {
	m.pages = append(m.pages, p)
	m.clearFilter()
}

func (m *Model) popPage() {
	if len(m.pages) == 0 {
		return
	}
	m.pages = m.pages[:len(m.pages)-1]
	m.clearFilter()
}

// cursor returns the cursor of whatever list is showing
func (m *Model) cursor() *int {
	if p := m.top(); p != nil {
		return &p.cursor
	}
	return &m.cursors[m.view]
}
