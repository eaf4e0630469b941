package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	selectedStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(12)
	priceStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	favoriteStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	toastStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	suggestionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeSuggestionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	suggestionBoxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("62")).MarginLeft(12)
	panelStyle            = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	backdropColor         = lipgloss.Color("236")
)
