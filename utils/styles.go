package utils

import "github.com/charmbracelet/lipgloss"

var (
	GoodColor = lipgloss.Color("#228B22") // Forest green
	WarnColor = lipgloss.Color("#CC3333") // Dark red
	InfoColor = lipgloss.Color("#4682B4") // Steel blue
)

var (
	GoodStyle = lipgloss.NewStyle().Foreground(GoodColor).Bold(true)
	WarnStyle = lipgloss.NewStyle().Foreground(WarnColor).Bold(true)
	InfoStyle = lipgloss.NewStyle().Foreground(InfoColor)
)
