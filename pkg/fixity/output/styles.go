package output

import "github.com/charmbracelet/lipgloss"

// ANSI 256-color palette shared by the styled formatters.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
)

var (
	// HeaderBox frames the run metadata.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the verdict and totals.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

var (
	SectionStyle = lipgloss.NewStyle().Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	PathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	// AddedStyle, ModifiedStyle and DeletedStyle mark the three change kinds.
	AddedStyle    = lipgloss.NewStyle().Foreground(ColorSuccess)
	ModifiedStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	DeletedStyle  = lipgloss.NewStyle().Foreground(ColorDanger)

	MatchStyle    = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	MismatchStyle = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	SizeStyle     = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
)
