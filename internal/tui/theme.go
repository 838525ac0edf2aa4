package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// 5250 terminal palette — the classic green-on-black phosphor look
// ---------------------------------------------------------------------------

const (
	colorGreen  lipgloss.Color = "#33ff33"
	colorWhite  lipgloss.Color = "#e8e8e8"
	colorCyan   lipgloss.Color = "#33ffff"
	colorBlue   lipgloss.Color = "#5599ff"
	colorRed    lipgloss.Color = "#ff5555"
	colorYellow lipgloss.Color = "#ffff66"
	colorDim    lipgloss.Color = "#1a8a1a"
	colorBlack  lipgloss.Color = "#0a0a0a"
)

var (
	screenStyle = lipgloss.NewStyle().Foreground(colorGreen).Background(colorBlack)
	titleStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	statusStyle = lipgloss.NewStyle().Foreground(colorBlue)

	fieldStyle   = lipgloss.NewStyle().Foreground(colorGreen).Underline(true)
	focusedStyle = lipgloss.NewStyle().Foreground(colorBlack).Background(colorGreen)

	msgInfoStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	msgWarnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	msgErrorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	keyLegendStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	disconnectedStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// spanStyle maps a server-side span class to its display style.
func spanStyle(class string) lipgloss.Style {
	switch class {
	case "title":
		return titleStyle
	case "label":
		return labelStyle
	case "status":
		return statusStyle
	case "error":
		return msgErrorStyle
	default:
		return screenStyle
	}
}
