package tui

import "github.com/charmbracelet/lipgloss"

// Theme is an accent colour offered in settings.
type Theme struct {
	Key    string
	Name   string
	Accent lipgloss.Color
}

var themes = []Theme{
	{"blue", "Sky", lipgloss.Color("#0A84FF")},
	{"indigo", "Indigo", lipgloss.Color("#5E5CE6")},
	{"teal", "Teal", lipgloss.Color("#30B0C7")},
	{"orange", "Sunrise", lipgloss.Color("#FF9F0A")},
	{"pink", "Blush", lipgloss.Color("#FF375F")},
	{"purple", "Violet", lipgloss.Color("#BF5AF2")},
}

const defaultTheme = "indigo"

func themeByKey(k string) Theme {
	for _, t := range themes {
		if t.Key == k {
			return t
		}
	}
	return themeByKey(defaultTheme)
}

// Color palette
var (
	colorPrimary   lipgloss.Color
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        lipgloss.Color
	colorSubtle    lipgloss.Color
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	bedtimeStyle      lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

func init() {
	applyTheme(defaultTheme, true)
}

// applyTheme recolours every style from the accent and the light/dark
// foreground.
func applyTheme(key string, dark bool) {
	colorPrimary = themeByKey(key).Accent
	if dark {
		colorFg = lipgloss.Color("#C0CAF5")
		colorSubtle = lipgloss.Color("#414868")
	} else {
		colorFg = lipgloss.Color("#1F2335")
		colorSubtle = lipgloss.Color("#A9B1D6")
	}

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	bedtimeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)
}
