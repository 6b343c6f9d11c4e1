package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber      = lipgloss.Color("#F59E0B")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	// MatchStyle highlights the characters a filter matched
	MatchStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Underline(true)
)

// Status markers
const (
	PlayingChar  = "▶"
	FavoriteChar = "★"
	QueuedChar   = "+"
)

var (
	PlayingMarker  = lipgloss.NewStyle().Foreground(Green).Render(PlayingChar)
	FavoriteMarker = lipgloss.NewStyle().Foreground(Amber).Render(FavoriteChar)
	QueuedMarker   = lipgloss.NewStyle().Foreground(LightGray).Render(QueuedChar)
)

// Tab bar
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Amber).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// ModalStyle frames the help screen and input prompts
var ModalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Amber).
	Padding(1, 2).
	Background(SlateDark)

// SpinnerFrames animates the startup category refresh
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
