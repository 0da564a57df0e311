package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#06B6D4") // Cyan 500
	proColor     = lipgloss.Color("#16A34A")
	conColor     = lipgloss.Color("#DC2626")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
	textPrimary  = lipgloss.Color("#F9FAFB")
	bgDark       = lipgloss.Color("#1F2937")
	bgMuted      = lipgloss.Color("#374151")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textPrimary).
			Background(primaryColor).
			Padding(0, 2)

	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(textPrimary).MarginTop(1)

	cursorStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(primaryColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)

	stanceStyle = lipgloss.NewStyle().Padding(0, 2).Background(bgMuted).Foreground(textPrimary)
	proStyle    = stanceStyle.Background(proColor).Bold(true)
	conStyle    = stanceStyle.Background(conColor).Bold(true)

	userBubble = lipgloss.NewStyle().
			Foreground(textPrimary).
			Background(primaryColor).
			Padding(0, 1)

	aiBubble = lipgloss.NewStyle().
			Foreground(textPrimary).
			Background(bgMuted).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(bgMuted).
			Padding(0, 1)

	rawStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDE047")).Background(bgDark)

	helpStyle = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
)
