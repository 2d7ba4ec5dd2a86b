package tui

import "github.com/charmbracelet/lipgloss"

// binance-trader theme
var (
	Gold      = lipgloss.Color("#F0B90B")
	LightGray = lipgloss.Color("#B0B0B0")
	White     = lipgloss.Color("#FFFFFF")
	Error     = lipgloss.Color("#FF6B6B")

	TitleStyle = lipgloss.NewStyle().
			Foreground(Gold).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)
