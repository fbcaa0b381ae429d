package view

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor = lipgloss.Color("#9333EA")
	MutedColor  = lipgloss.Color("#94A3B8")
	ErrorColor  = lipgloss.Color("#EF4444")
	RatingColor = lipgloss.Color("#FACC15")

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	RatingStyle  = lipgloss.NewStyle().Bold(true).Foreground(RatingColor)
	TagStyle     = lipgloss.NewStyle().Foreground(AccentColor)
	ActiveStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(AccentColor)
	HeadingStyle = lipgloss.NewStyle().Bold(true)

	ErrorBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ErrorColor).
				Foreground(ErrorColor).
				Padding(0, 1)
)
