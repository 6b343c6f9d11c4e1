package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/podcatch/internal/search"
	"github.com/mmcdole/podcatch/internal/tui/styles"
)

type rowKind int

const (
	rowEpisode rowKind = iota
	rowPodcast
	rowCategory
)

// row is one rendered list line
type row struct {
	kind    rowKind
	id      string
	title   string
	detail  string
	marker  string
	matched []int
}

// chromeHeight covers the tab bar, the prompt line, the footer and help
const chromeHeight = 5

func (m Model) selected() (row, bool) {
	rows := m.visibleRows()
	c := *m.cursor()
	if c < 0 || c >= len(rows) {
		return row{}, false
	}
	return rows[c], true
}

// visibleRows builds the rows of whatever list is showing, filter applied
func (m Model) visibleRows() []row {
	if p := m.top(); p != nil {
		return m.pageRows(*p, m.filter.Value())
	}
	return m.tabRows(m.view, m.filter.Value())
}

func (m Model) tabRows(v View, query string) []row {
	var rows []row
	switch v {
	case ViewCategories:
		for _, e := range m.categories.Find(query) {
			rows = append(rows, row{kind: rowCategory, id: e.ID, title: e.Path()})
		}
		return rows
	case ViewQueue:
		for _, id := range m.queue.Values() {
			rows = append(rows, m.episodeRow(id))
		}
	case ViewFavorites:
		for _, id := range m.favorites.Values() {
			rows = append(rows, m.podcastRow(id))
		}
	}
	return filterRows(rows, query)
}

func (m Model) pageRows(p page, query string) []row {
	rows := make([]row, 0, len(p.ids))
	for _, id := range p.ids {
		if p.kind == pageEpisodes {
			rows = append(rows, m.episodeRow(id))
		} else {
			rows = append(rows, m.podcastRow(id))
		}
	}
	return filterRows(rows, query)
}

// episodeRow marks the playing episode, then queued ones
func (m Model) episodeRow(id string) row {
	r := row{kind: rowEpisode, id: id, title: m.episodeTitle(id), marker: " "}
	if ep, ok := m.episodes[id]; ok && ep.Seconds > 0 {
		r.detail = ep.FormattedDuration()
	}
	current, _ := m.deps.Playback.CurrentEpisodeID()
	switch {
	case id == current:
		r.marker = styles.PlayingMarker
	case m.queue.Has(id):
		r.marker = styles.QueuedMarker
	}
	return r
}

func (m Model) podcastRow(id string) row {
	r := row{kind: rowPodcast, id: id, title: m.podcastTitle(id), detail: m.podcastCategory(id), marker: " "}
	if m.favorites.Has(id) {
		r.marker = styles.FavoriteMarker
	}
	return r
}

func filterRows(rows []row, query string) []row {
	if strings.TrimSpace(query) == "" {
		return rows
	}

	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.title
	}
	matches := search.FilterTitles(query, titles)
	filtered := make([]row, len(matches))
	for i, match := range matches {
		filtered[i] = rows[match.Index]
		filtered[i].matched = match.MatchedIndexes
	}
	return filtered
}

// View renders the application
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch {
	case m.prompt != promptNone:
		b.WriteString(styles.AccentStyle.Render(m.promptLabel()) + m.input.View())
	case m.filtering || m.filter.Value() != "":
		b.WriteString(m.filter.View())
	case m.top() != nil:
		b.WriteString(m.renderBreadcrumb())
	}
	b.WriteString("\n")

	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(m.help.View(Keys))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		label := v.String()
		switch v {
		case ViewQueue:
			label = fmt.Sprintf("%s (%d)", label, m.queue.Len())
		case ViewFavorites:
			label = fmt.Sprintf("%s (%d)", label, m.favorites.Len())
		}
		if v == m.view {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) promptLabel() string {
	switch m.prompt {
	case promptSearch:
		return "search podcasts: "
	case promptCategory:
		return "go to category: "
	default:
		return "add " + strings.ToLower(m.view.String()) + " id: "
	}
}

// renderBreadcrumb shows the path of open catalog pages
func (m Model) renderBreadcrumb() string {
	parts := make([]string, 0, len(m.pages)+1)
	parts = append(parts, m.view.String())
	for _, p := range m.pages {
		parts = append(parts, p.title)
	}
	return styles.DimStyle.Render(strings.Join(parts, " › "))
}

func (m Model) renderList() string {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return styles.DimStyle.Render(m.emptyText())
	}

	height := m.height - chromeHeight
	if height < 1 {
		height = len(rows)
	}
	cursor := *m.cursor()
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, selected bool) string {
	title := highlight(r.title, r.matched)
	line := title
	if r.marker != "" {
		line = r.marker + " " + line
	}
	if r.detail != "" {
		line += "  " + styles.DimStyle.Render(r.detail)
	}
	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

// highlight styles the runes of s at the given positions
func highlight(s string, positions []int) string {
	if len(positions) == 0 {
		return s
	}
	set := make(map[int]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	var b strings.Builder
	for i, r := range []rune(s) {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m Model) emptyText() string {
	if m.filter.Value() != "" {
		return "no matches"
	}
	if p := m.top(); p != nil {
		switch {
		case p.loading:
			return "loading..."
		case p.kind == pageEpisodes:
			return "no episodes"
		default:
			return "no podcasts"
		}
	}
	switch m.view {
	case ViewQueue:
		return "queue is empty, press a to add an episode id"
	case ViewFavorites:
		return "no favorites yet, press a to add a podcast id"
	default:
		return "no categories cached"
	}
}

func (m Model) renderFooter() string {
	var left string
	if m.status != "" {
		if m.statusErr {
			left = styles.ErrorStyle.Render(m.status)
		} else {
			left = styles.DimStyle.Render(m.status)
		}
	}

	var right string
	if id, ok := m.deps.Playback.CurrentEpisodeID(); ok {
		right = styles.PlayingMarker + " " + styles.TitleStyle.Render(m.episodeTitle(id))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	full := m.help
	full.ShowAll = true
	content := styles.TitleStyle.Render("podcatch") + "\n\n" + full.View(Keys) +
		"\n\n" + styles.DimStyle.Render("Press any key to return...")

	if m.width == 0 || m.height == 0 {
		return styles.ModalStyle.Render(content)
	}
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}
