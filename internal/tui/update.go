package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/podcatch/internal/playback"
	"github.com/mmcdole/podcatch/internal/search"
)

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ChangeMsg:
		m.logger.Debug("state changed", "topic", msg.Change.Topic, "command", msg.Change.Command, "id", msg.Change.SubjectID)
		m.reload()
		cmds := append(m.resolveMissing(), WaitForChangeCmd(m.deps.Changes))
		return m, tea.Batch(cmds...)

	case PlayerFinishedMsg:
		return m.handlePlayerFinished(msg)

	case PlaybackMsg:
		m.handlePlayback(msg)
		return m, nil

	case StoppedMsg:
		m.setStatus("stopped", false)
		return m, nil

	case PodcastsLoadedMsg:
		m.handlePodcastsLoaded(msg)
		return m, nil

	case EpisodesLoadedMsg:
		m.handleEpisodesLoaded(msg)
		return m, nil

	case EpisodeResolvedMsg:
		delete(m.pending, "e:"+msg.ID)
		if msg.Err != nil {
			m.logger.Debug("failed to resolve episode", "id", msg.ID, "error", msg.Err)
			return m, nil
		}
		m.episodes[msg.ID] = msg.Episode
		return m, nil

	case PodcastResolvedMsg:
		delete(m.pending, "p:"+msg.ID)
		if msg.Err != nil {
			m.logger.Debug("failed to resolve podcast", "id", msg.ID, "error", msg.Err)
			return m, nil
		}
		m.podcasts[msg.ID] = msg.Podcast
		return m, nil

	case ErrMsg:
		m.logger.Warn("catalog request failed", "context", msg.Context, "error", msg.Err)
		m.setStatus(msg.Error(), true)
		if p := m.top(); p != nil {
			p.loading = false
		}
		return m, nil
	}

	return m, nil
}

// handlePlayerFinished removes the finished episode from the queue here in
// the update loop and only hands the load of the next one to a command.
func (m Model) handlePlayerFinished(msg PlayerFinishedMsg) (tea.Model, tea.Cmd) {
	wait := WaitForPlayerCmd(m.deps.PlayerDone)
	if msg.Err != nil {
		m.setStatus(fmt.Sprintf("player exited: %v", msg.Err), true)
		return m, wait
	}

	next, ok := m.deps.Playback.Complete(msg.EpisodeID)
	if !ok {
		m.setStatus("queue finished", false)
		return m, wait
	}
	return m, tea.Batch(LoadEpisodeCmd(m.deps.Playback, next), wait)
}

func (m *Model) handlePlayback(msg PlaybackMsg) {
	switch {
	case msg.Err != nil && playback.IsUnavailable(msg.Err):
		m.setStatus(fmt.Sprintf("episode %s unavailable", msg.EpisodeID), true)
	case msg.Err != nil:
		m.setStatus(msg.Err.Error(), true)
	case !msg.Loaded:
		m.setStatus("nothing to play", false)
	default:
		m.setStatus("playing "+m.episodeTitle(msg.EpisodeID), false)
	}
}

func (m *Model) handlePodcastsLoaded(msg PodcastsLoadedMsg) {
	ids := make([]string, 0, len(msg.Podcasts))
	for i := range msg.Podcasts {
		p := msg.Podcasts[i]
		id := p.ID.String()
		m.podcasts[id] = &p
		ids = append(ids, id)
	}
	for i := len(m.pages) - 1; i >= 0; i-- {
		pg := &m.pages[i]
		if pg.kind == pagePodcasts && pg.token == msg.Token {
			pg.ids = ids
			pg.loading = false
			break
		}
	}
	m.clampPage()
}

func (m *Model) handleEpisodesLoaded(msg EpisodesLoadedMsg) {
	if msg.Podcast != nil {
		m.podcasts[msg.PodcastID] = msg.Podcast
	}
	ids := make([]string, 0, len(msg.Episodes))
	for i := range msg.Episodes {
		ep := msg.Episodes[i]
		id := ep.ID.String()
		m.episodes[id] = &ep
		ids = append(ids, id)
	}
	for i := len(m.pages) - 1; i >= 0; i-- {
		pg := &m.pages[i]
		if pg.kind == pageEpisodes && pg.podcastID == msg.PodcastID {
			pg.ids = ids
			pg.loading = false
			pg.title = m.podcastTitle(msg.PodcastID)
			break
		}
	}
	m.clampPage()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptInput(msg)
	}
	if m.filtering {
		return m.handleFilterInput(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
	case key.Matches(msg, Keys.Escape):
		m.status = ""
		if m.filter.Value() != "" {
			m.clearFilter()
		} else {
			m.popPage()
		}
	case key.Matches(msg, Keys.Back):
		m.popPage()
	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, Keys.Home):
		*m.cursor() = 0
	case key.Matches(msg, Keys.End):
		*m.cursor() = len(m.visibleRows()) - 1
		m.clampActive()
	case key.Matches(msg, Keys.NextTab):
		m.switchView((m.view + 1) % viewCount)
	case key.Matches(msg, Keys.PrevTab):
		m.switchView((m.view + viewCount - 1) % viewCount)

	case key.Matches(msg, Keys.Open):
		return m, m.open()
	case key.Matches(msg, Keys.Play):
		return m, m.play()
	case key.Matches(msg, Keys.Next):
		return m, NavigateCmd(m.deps.Playback.PlayNext)
	case key.Matches(msg, Keys.Previous):
		return m, NavigateCmd(m.deps.Playback.PlayPrevious)
	case key.Matches(msg, Keys.Stop):
		if m.deps.Player != nil {
			return m, StopCmd(m.deps.Player)
		}

	case key.Matches(msg, Keys.ToggleQueue):
		m.toggleQueue()
	case key.Matches(msg, Keys.ToggleFavorite):
		m.toggleFavorite()
	case key.Matches(msg, Keys.Remove):
		m.removeSelected()
	case key.Matches(msg, Keys.Add):
		if m.top() != nil || m.view == ViewCategories {
			break
		}
		return m, m.openPrompt(promptAdd, "id")
	case key.Matches(msg, Keys.Search):
		return m, m.openPrompt(promptSearch, "title")
	case key.Matches(msg, Keys.Category):
		return m, m.openPrompt(promptCategory, "category name")
	case key.Matches(msg, Keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	}
	return m, nil
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.clearFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	*m.cursor() = 0
	return m, cmd
}

func (m *Model) openPrompt(kind promptKind, placeholder string) tea.Cmd {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	return m.input.Focus()
}

func (m Model) handlePromptInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		switch kind {
		case promptAdd:
			m.addByID(value)
		case promptSearch:
			return m, m.searchTitles(value)
		case promptCategory:
			entry, ok := m.categories.Closest(value)
			if !ok {
				m.setStatus(fmt.Sprintf("no category matches %q", value), true)
				return m, nil
			}
			return m, m.openCategory(entry)
		}
		return m, nil
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) addByID(id string) {
	switch m.view {
	case ViewQueue:
		m.deps.State.AddToQueue(id)
		m.setStatus("queued "+id, false)
	case ViewFavorites:
		m.deps.State.AddFavorite(id)
		m.setStatus("favorited "+id, false)
	}
}

func (m *Model) searchTitles(query string) tea.Cmd {
	if m.deps.Catalog == nil {
		m.setStatus("catalog unavailable", true)
		return nil
	}
	m.pushPage(page{
		kind:    pagePodcasts,
		title:   fmt.Sprintf("search %q", query),
		token:   searchToken(query),
		loading: true,
	})
	return SearchPodcastsCmd(m.deps.Catalog, query)
}

func (m *Model) openCategory(e search.CategoryEntry) tea.Cmd {
	if m.deps.Catalog == nil {
		m.setStatus("catalog unavailable", true)
		return nil
	}
	m.pushPage(page{
		kind:    pagePodcasts,
		title:   e.Path(),
		token:   categoryToken(e.ID),
		loading: true,
	})
	return LoadCategoryCmd(m.deps.Catalog, e.ID)
}

func (m *Model) openPodcast(id string) tea.Cmd {
	if m.deps.Catalog == nil {
		m.setStatus("catalog unavailable", true)
		return nil
	}
	m.pushPage(page{
		kind:      pageEpisodes,
		title:     m.podcastTitle(id),
		podcastID: id,
		loading:   true,
	})
	return LoadEpisodesCmd(m.deps.Catalog, id)
}

// open drills into the selected row, or plays it when it is an episode
func (m *Model) open() tea.Cmd {
	r, ok := m.selected()
	if !ok {
		return nil
	}
	switch r.kind {
	case rowEpisode:
		return LoadEpisodeCmd(m.deps.Playback, r.id)
	case rowPodcast:
		return m.openPodcast(r.id)
	case rowCategory:
		for _, e := range m.categories.Entries() {
			if e.ID == r.id {
				return m.openCategory(e)
			}
		}
	}
	return nil
}

// play loads the selected episode, or the head of the queue when no episode
// is selected and nothing is loaded.
func (m *Model) play() tea.Cmd {
	if r, ok := m.selected(); ok && r.kind == rowEpisode {
		return LoadEpisodeCmd(m.deps.Playback, r.id)
	}
	if _, ok := m.deps.Playback.CurrentEpisodeID(); ok {
		return nil
	}
	return NavigateCmd(m.deps.Playback.PlayFirst)
}

// toggleQueue toggles the selected episode, falling back to the playing
// episode when the selection is not an episode.
func (m *Model) toggleQueue() {
	var id string
	if r, ok := m.selected(); ok && r.kind == rowEpisode {
		id = r.id
	} else if current, ok := m.deps.Playback.CurrentEpisodeID(); ok {
		id = current
	} else {
		return
	}
	if m.deps.State.ToggleInQueue(id) {
		m.setStatus("queued "+m.episodeTitle(id), false)
	} else {
		m.setStatus("dequeued "+m.episodeTitle(id), false)
	}
}

// toggleFavorite favorites the selected podcast, or the podcast of the
// selected episode when it is known.
func (m *Model) toggleFavorite() {
	r, ok := m.selected()
	if !ok {
		return
	}
	var podcastID string
	switch r.kind {
	case rowPodcast:
		podcastID = r.id
	case rowEpisode:
		podcastID = m.episodePodcast(r.id)
	}
	if podcastID == "" {
		return
	}
	if m.deps.State.ToggleFavorite(podcastID) {
		m.setStatus("favorited "+m.podcastTitle(podcastID), false)
	} else {
		m.setStatus("unfavorited "+m.podcastTitle(podcastID), false)
	}
}

// removeSelected removes the selected entry from the tab's collection.
// Catalog pages have nothing to remove.
func (m *Model) removeSelected() {
	if m.top() != nil {
		return
	}
	r, ok := m.selected()
	if !ok {
		return
	}
	switch m.view {
	case ViewQueue:
		m.deps.State.RemoveFromQueue(r.id)
	case ViewFavorites:
		m.deps.State.RemoveFavorite(r.id)
	}
}

func (m *Model) switchView(v View) {
	m.view = v
	m.pages = nil
	m.clearFilter()
}

func (m *Model) clearFilter() {
	m.filtering = false
	m.filter.Blur()
	m.filter.SetValue("")
	m.clampActive()
}

func (m *Model) moveCursor(delta int) {
	*m.cursor() += delta
	m.clampActive()
}

func (m *Model) clampActive() {
	if m.top() != nil {
		m.clampPage()
		return
	}
	m.clampTab(m.view)
}

func (m *Model) clampTab(v View) {
	query := ""
	if v == m.view && m.top() == nil {
		query = m.filter.Value()
	}
	clamp(&m.cursors[v], len(m.tabRows(v, query)))
}

func (m *Model) clampPage() {
	if p := m.top(); p != nil {
		clamp(&p.cursor, len(m.pageRows(*p, m.filter.Value())))
	}
}

func clamp(c *int, n int) {
	if *c >= n {
		*c = n - 1
	}
	if *c < 0 {
		*c = 0
	}
}

func (m Model) episodeTitle(id string) string {
	if ep, ok := m.episodes[id]; ok && ep.Title != "" {
		return ep.Title
	}
	return "episode " + id
}

func (m Model) podcastTitle(id string) string {
	if p, ok := m.podcasts[id]; ok && p.Title != "" {
		return p.Title
	}
	return "podcast " + id
}

// episodePodcast returns the podcast id of an episode when it is known
func (m Model) episodePodcast(id string) string {
	if ep, ok := m.episodes[id]; ok && ep.PodcastID != "" {
		return ep.PodcastID.String()
	}
	if p := m.pageFor(id); p != nil {
		return p.podcastID
	}
	return ""
}

// pageFor finds the episodes page listing the episode
func (m Model) pageFor(episodeID string) *page {
	for i := len(m.pages) - 1; i >= 0; i-- {
		p := &m.pages[i]
		if p.kind != pageEpisodes {
			continue
		}
		for _, id := range p.ids {
			if id == episodeID {
				return p
			}
		}
	}
	return nil
}

// podcastCategory names the first known category of a podcast
func (m Model) podcastCategory(id string) string {
	p, ok := m.podcasts[id]
	if !ok {
		return ""
	}
	for _, c := range p.Categories {
		if name, ok := m.deps.State.CategoryName(c.String()); ok {
			return name
		}
	}
	return ""
}
